package handler

import (
	"net/http"
	"strings"

	"github.com/rzyfront/vendix-core/internal/service"
	"github.com/rzyfront/vendix-core/internal/tenantctx"

	"go.uber.org/zap"
)

// TenantAuthMiddleware validates Bearer tokens and attaches the resolved
// tenant identity to the request context. Every scoped query downstream
// reads its organization id from that context; requests that never pass
// through here carry no scope and are rejected by the data layer.
func TenantAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "authentication token not provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			claims, err := authSvc.ValidateAccessToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			tc := service.TenantContextFromClaims(claims)
			ctx := tenantctx.NewContext(r.Context(), tc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperAdmin guards platform-level endpoints. It must run after
// TenantAuthMiddleware.
func RequireSuperAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tenantctx.IsSuperAdmin(r.Context()) {
				logger.Warn("auth: super admin required",
					zap.String("path", r.URL.Path),
					zap.Int64("user_id", tenantctx.UserID(r.Context())),
				)
				writeError(w, http.StatusForbidden, "super admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
