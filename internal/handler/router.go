package handler

import (
	"net/http"
	"time"

	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger reports backend health for the readiness probe.
type Pinger interface {
	Ping() error
}

// Deps bundles everything the router needs.
type Deps struct {
	Domains      *service.DomainService
	Settings     *service.SettingsService
	Users        *service.UserService
	Provisioning *service.ProvisioningService
	Auth         *service.AuthService
	Metrics      *observability.Metrics
	Backend      Pinger
	AdminOrigin  string
	Logger       *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	logger := d.Logger

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.AdminOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Backend, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Public: authentication and edge resolution
		// =============================================
		r.Post("/auth/login", loginHandler(d.Auth, logger))
		r.Get("/domains/resolve/{hostname}", resolveDomainHandler(d.Domains, logger))

		// Everything below requires a valid tenant identity.
		r.Group(func(r chi.Router) {
			r.Use(TenantAuthMiddleware(d.Auth, logger))

			// =============================================
			// Domains
			// =============================================
			r.Get("/domains", listDomainsHandler(d.Domains, logger))
			r.Post("/domains", createDomainHandler(d.Domains, logger))
			r.Get("/domains/stats", domainStatsHandler(d.Domains, d.Metrics, logger))
			r.Get("/domains/export.xlsx", exportDomainsHandler(d.Domains, logger))
			r.Get("/domains/{hostname}", getDomainHandler(d.Domains, logger))
			r.Patch("/domains/{hostname}", updateDomainHandler(d.Domains, logger))
			r.Delete("/domains/{hostname}", deleteDomainHandler(d.Domains, logger))
			r.Post("/domains/{hostname}/verify", verifyDomainHandler(d.Domains, logger))
			r.Post("/domains/{hostname}/duplicate", duplicateDomainHandler(d.Domains, logger))

			// =============================================
			// Stores and their settings
			// =============================================
			r.Get("/stores", listStoresHandler(d.Provisioning, logger))
			r.Post("/stores", createStoreHandler(d.Provisioning, logger))
			r.Get("/stores/{storeId}", getStoreHandler(d.Provisioning, logger))
			r.Put("/stores/{storeId}", updateStoreHandler(d.Provisioning, logger))
			r.Delete("/stores/{storeId}", deleteStoreHandler(d.Provisioning, logger))
			r.Get("/stores/{storeId}/settings", getStoreSettingsHandler(d.Settings, logger))
			r.Put("/stores/{storeId}/settings", updateStoreSettingsHandler(d.Settings, logger))
			r.Get("/stores/{storeId}/ecommerce-settings", getEcommerceSettingsHandler(d.Settings, logger))
			r.Put("/stores/{storeId}/ecommerce-settings", updateEcommerceSettingsHandler(d.Settings, logger))

			// =============================================
			// Organization settings (caller's own org)
			// =============================================
			r.Get("/organization/settings", getOrganizationSettingsHandler(d.Settings, logger))
			r.Put("/organization/settings", updateOrganizationSettingsHandler(d.Settings, logger))

			// =============================================
			// Users
			// =============================================
			r.Get("/users", listUsersHandler(d.Users, logger))
			r.Post("/users", createUserHandler(d.Users, logger))
			r.Get("/users/{userId}", getUserHandler(d.Users, logger))
			r.Put("/users/{userId}", updateUserHandler(d.Users, logger))
			r.Delete("/users/{userId}", deleteUserHandler(d.Users, logger))
			r.Post("/users/bulk-status", bulkUserStatusHandler(d.Users, logger))

			// =============================================
			// Audit log
			// =============================================
			r.Get("/audit", listAuditHandler(d.Users, logger))

			// =============================================
			// Organizations (platform super admin only)
			// =============================================
			r.Group(func(r chi.Router) {
				r.Use(RequireSuperAdmin(logger))
				r.Get("/organizations", listOrganizationsHandler(d.Provisioning, logger))
				r.Post("/organizations", createOrganizationHandler(d.Provisioning, logger))
				r.Get("/organizations/{orgId}", getOrganizationHandler(d.Provisioning, logger))
			})
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(backend Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		if backend != nil {
			if err := backend.Ping(); err != nil {
				logger.Warn("healthz: backend ping failed", zap.Error(err))
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, code, map[string]any{
			"status":     status,
			"checked_at": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
