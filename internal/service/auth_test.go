package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/memstore"
	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/service"
)

func newAuthService(t *testing.T) (*service.AuthService, *memstore.Store) {
	t.Helper()
	mem := memstore.New()
	store := scoped.New(mem, observability.NewMetrics(), zap.NewNop())
	return service.NewAuthService(store, "test-secret", 15*time.Minute, zap.NewNop()), mem
}

func seedUser(t *testing.T, mem *memstore.Store, email, password, status string) *domain.User {
	t.Helper()
	hash, err := service.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	storeID := int64(9)
	u, err := mem.CreateUser(context.Background(), 3, &domain.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		StoreID:      &storeID,
		Roles:        []string{"admin"},
		Status:       status,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestLogin_TokenCarriesTenantIdentity(t *testing.T) {
	svc, mem := newAuthService(t)
	u := seedUser(t, mem, "owner@acme.test", "hunter22", "active")

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "owner@acme.test",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("empty access token")
	}
	if resp.UserID != u.ID || resp.OrganizationID != 3 {
		t.Errorf("identity in response: %+v", resp)
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in = %d", resp.ExpiresIn)
	}

	// The middleware path: validate the token and rebuild the tenant context.
	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	tc := service.TenantContextFromClaims(claims)
	if tc.UserID != u.ID {
		t.Errorf("claims user id = %d, want %d", tc.UserID, u.ID)
	}
	if tc.OrganizationID != 3 {
		t.Errorf("claims org id = %d", tc.OrganizationID)
	}
	if tc.StoreID == nil || *tc.StoreID != 9 {
		t.Errorf("claims store id = %v", tc.StoreID)
	}
	if !tc.Roles["admin"] {
		t.Errorf("claims roles = %v", tc.Roles)
	}
	if tc.IsSuperAdmin {
		t.Error("super admin flag set for regular user")
	}
}

func TestLogin_Rejections(t *testing.T) {
	svc, mem := newAuthService(t)
	seedUser(t, mem, "owner@acme.test", "hunter22", "active")
	seedUser(t, mem, "frozen@acme.test", "hunter22", "inactive")

	tests := []struct {
		name string
		req  domain.LoginRequest
	}{
		{"wrong password", domain.LoginRequest{Email: "owner@acme.test", Password: "nope"}},
		{"unknown email", domain.LoginRequest{Email: "ghost@acme.test", Password: "hunter22"}},
		{"inactive account", domain.LoginRequest{Email: "frozen@acme.test", Password: "hunter22"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &tt.req)
			var unauth *domain.ErrUnauthorized
			if !errors.As(err, &unauth) {
				t.Fatalf("err = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestLogin_MissingCredentials(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "owner@acme.test"})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestValidateAccessToken_Rejections(t *testing.T) {
	svc, mem := newAuthService(t)
	seedUser(t, mem, "owner@acme.test", "hunter22", "active")

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "owner@acme.test",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Garbage token.
	if _, err := svc.ValidateAccessToken("not-a-jwt"); err == nil {
		t.Error("garbage token accepted")
	}

	// Token signed with a different secret.
	other := service.NewAuthService(
		scoped.New(mem, observability.NewMetrics(), zap.NewNop()),
		"other-secret", 15*time.Minute, zap.NewNop(),
	)
	if _, err := other.ValidateAccessToken(resp.AccessToken); err == nil {
		t.Error("token signed with a different secret accepted")
	}

	var unauth *domain.ErrUnauthorized
	_, err = svc.ValidateAccessToken("not-a-jwt")
	if !errors.As(err, &unauth) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	mem := memstore.New()
	store := scoped.New(mem, observability.NewMetrics(), zap.NewNop())
	svc := service.NewAuthService(store, "test-secret", -time.Minute, zap.NewNop())
	seedUser(t, mem, "owner@acme.test", "hunter22", "active")

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "owner@acme.test",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	var unauth *domain.ErrUnauthorized
	_, err = svc.ValidateAccessToken(resp.AccessToken)
	if !errors.As(err, &unauth) {
		t.Errorf("expired token: err = %v, want ErrUnauthorized", err)
	}
}
