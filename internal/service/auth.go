package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/tenantctx"
)

var authTracer = otel.Tracer("service/auth")

// AuthService issues and validates access tokens carrying tenant identity.
type AuthService struct {
	store     *scoped.Store
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store *scoped.Store, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if req.Email == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email and password are required"}
	}

	// Login runs before any tenant scope exists.
	user, err := s.store.WithoutScope().GetUserByEmail(ctx, req.Email)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: bad password", zap.String("email", req.Email))
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	if user.Status != "active" {
		return nil, &domain.ErrUnauthorized{Message: "account is not active"}
	}

	token, err := s.signAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.Int64("organization_id", user.OrganizationID),
	)

	return &domain.LoginResponse{
		AccessToken:    token,
		ExpiresIn:      int(s.accessTTL.Seconds()),
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		StoreID:        user.StoreID,
		Name:           user.Name,
	}, nil
}

// ============================================================
// Token validation — used by middleware
// ============================================================

// JWTClaims are the custom claims in access tokens. The tenant identity is
// embedded so the middleware can build the request's TenantContext without
// a store round trip.
type JWTClaims struct {
	OrganizationID int64    `json:"org_id"`
	StoreID        *int64   `json:"store_id,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	IsSuperAdmin   bool     `json:"is_super_admin,omitempty"`
	Type           string   `json:"type"`
	jwt.RegisteredClaims
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}
	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}
	return claims, nil
}

// TenantContextFromClaims builds the request-scoped tenant identity.
func TenantContextFromClaims(claims *JWTClaims) *tenantctx.TenantContext {
	userID, _ := strconv.ParseInt(claims.Subject, 10, 64)
	roles := make(map[string]bool, len(claims.Roles))
	for _, r := range claims.Roles {
		roles[r] = true
	}
	return &tenantctx.TenantContext{
		UserID:         userID,
		OrganizationID: claims.OrganizationID,
		StoreID:        claims.StoreID,
		Roles:          roles,
		IsSuperAdmin:   claims.IsSuperAdmin,
	}
}

func (s *AuthService) signAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		OrganizationID: user.OrganizationID,
		StoreID:        user.StoreID,
		Roles:          user.Roles,
		IsSuperAdmin:   user.IsSuperAdmin,
		Type:           "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "vendix-core",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// HashPassword is the bcrypt hash used when creating users.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
