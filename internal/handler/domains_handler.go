package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/service"
	"github.com/rzyfront/vendix-core/internal/tenantctx"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Edge resolution — GET /v1/domains/resolve/{hostname}
// ============================================================

func resolveDomainHandler(svc *service.DomainService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/domains/resolve/{hostname}")
		defer span.End()

		hostname := chi.URLParam(r, "hostname")
		if hostname == "" {
			writeError(w, http.StatusBadRequest, "hostname is required")
			return
		}
		span.SetAttributes(attribute.String("domain.hostname", hostname))

		rec, err := svc.ResolveDomain(ctx, hostname)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// ============================================================
// Domains CRUD
// ============================================================

func listDomainsHandler(svc *service.DomainService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/domains")
		defer span.End()

		f := domainFilterFromQuery(r)
		page, pageSize := parsePagination(r)

		domains, total, err := svc.ListDomains(ctx, f, page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeList(w, domains, total, page, pageSize)
	}
}

func createDomainHandler(svc *service.DomainService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/domains")
		defer span.End()

		var input domain.CreateDomainInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.String("domain.hostname", input.Hostname))

		rec, err := svc.CreateDomainSetting(ctx, &input)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

func getDomainHandler(svc *service.DomainService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/domains/{hostname}")
		defer span.End()

		rec, err := svc.GetDomain(ctx, chi.URLParam(r, "hostname"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func updateDomainHandler(svc *service.DomainService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/domains/{hostname}")
		defer span.End()

		var patch domain.UpdateDomainPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rec, err := svc.UpdateDomainSetting(ctx, chi.URLParam(r, "hostname"), &patch)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func deleteDomainHandler(svc *service.DomainService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/domains/{hostname}")
		defer span.End()

		if err := svc.DeleteDomain(ctx, chi.URLParam(r, "hostname")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Verification and duplication
// ============================================================

func verifyDomainHandler(svc *service.DomainService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/domains/{hostname}/verify")
		defer span.End()

		var body struct {
			Checks []domain.VerifyCheck `json:"checks,omitempty"`
		}
		// An empty body means "run the default checks".
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		result, err := svc.VerifyDomain(ctx, chi.URLParam(r, "hostname"), body.Checks)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func duplicateDomainHandler(svc *service.DomainService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/domains/{hostname}/duplicate")
		defer span.End()

		var body struct {
			NewHostname string `json:"new_hostname"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rec, err := svc.DuplicateDomainSetting(ctx, chi.URLParam(r, "hostname"), body.NewHostname)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// ============================================================
// Stats and export
// ============================================================

func domainStatsHandler(svc *service.DomainService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/domains/stats")
		defer span.End()

		stats, err := svc.GetDomainStats(ctx, platformScope(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Data *domain.DomainStats               `json:"data"`
			Meta *observability.ResolutionSnapshot `json:"meta"`
		}{Data: stats, Meta: metrics.GetResolutionSnapshot()})
	}
}

func exportDomainsHandler(svc *service.DomainService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/domains/export.xlsx")
		defer span.End()

		data, err := svc.ExportDomainsXLSX(ctx, domainFilterFromQuery(r), platformScope(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		filename := fmt.Sprintf("domains_%s.xlsx", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

// platformScope reports whether the caller asked for (and may see) the
// platform-wide view instead of their own organization's.
func platformScope(r *http.Request) bool {
	return r.URL.Query().Get("scope") == "platform" && tenantctx.IsSuperAdmin(r.Context())
}

func domainFilterFromQuery(r *http.Request) domain.DomainFilter {
	f := domain.DomainFilter{
		DomainType: domain.DomainType(r.URL.Query().Get("domain_type")),
		Status:     domain.DomainStatus(r.URL.Query().Get("status")),
		Search:     r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("store_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			f.StoreID = &id
		}
	}
	return f
}
