package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Organizations (super admin)
// ============================================================

func listOrganizationsHandler(svc *service.ProvisioningService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/organizations")
		defer span.End()

		page, pageSize := parsePagination(r)
		orgs, total, err := svc.ListOrganizations(ctx, page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeList(w, orgs, total, page, pageSize)
	}
}

func createOrganizationHandler(svc *service.ProvisioningService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/organizations")
		defer span.End()

		var input domain.CreateOrganizationInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.String("organization.name", input.Name))

		org, err := svc.CreateOrganization(ctx, &input)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, org)
	}
}

func getOrganizationHandler(svc *service.ProvisioningService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/organizations/{orgId}")
		defer span.End()

		orgID, err := parseIDParam(r, chi.URLParam(r, "orgId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid organization id")
			return
		}

		org, err := svc.GetOrganization(ctx, orgID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, org)
	}
}
