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
// Stores
// ============================================================

func listStoresHandler(svc *service.ProvisioningService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/stores")
		defer span.End()

		page, pageSize := parsePagination(r)
		stores, total, err := svc.ListStores(ctx, page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeList(w, stores, total, page, pageSize)
	}
}

func createStoreHandler(svc *service.ProvisioningService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/stores")
		defer span.End()

		var input domain.CreateStoreInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		st, err := svc.CreateStore(ctx, &input)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, st)
	}
}

func getStoreHandler(svc *service.ProvisioningService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/stores/{storeId}")
		defer span.End()

		storeID, err := parseIDParam(r, chi.URLParam(r, "storeId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid store id")
			return
		}
		span.SetAttributes(attribute.Int64("store.id", storeID))

		st, err := svc.GetStore(ctx, storeID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func updateStoreHandler(svc *service.ProvisioningService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/stores/{storeId}")
		defer span.End()

		storeID, err := parseIDParam(r, chi.URLParam(r, "storeId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid store id")
			return
		}

		var st domain.Store
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		st.ID = storeID

		updated, err := svc.UpdateStore(ctx, &st)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteStoreHandler(svc *service.ProvisioningService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/stores/{storeId}")
		defer span.End()

		storeID, err := parseIDParam(r, chi.URLParam(r, "storeId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid store id")
			return
		}

		if err := svc.DeleteStore(ctx, storeID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Store settings
// ============================================================

func getStoreSettingsHandler(svc *service.SettingsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/stores/{storeId}/settings")
		defer span.End()

		storeID, err := parseIDParam(r, chi.URLParam(r, "storeId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid store id")
			return
		}

		settings, err := svc.GetStoreSettings(ctx, storeID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

func updateStoreSettingsHandler(svc *service.SettingsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/stores/{storeId}/settings")
		defer span.End()

		storeID, err := parseIDParam(r, chi.URLParam(r, "storeId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid store id")
			return
		}

		var patch domain.StoreSettingsDoc
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		settings, err := svc.UpdateStoreSettings(ctx, storeID, &patch)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

// ============================================================
// Ecommerce settings
// ============================================================

func getEcommerceSettingsHandler(svc *service.SettingsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/stores/{storeId}/ecommerce-settings")
		defer span.End()

		storeID, err := parseIDParam(r, chi.URLParam(r, "storeId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid store id")
			return
		}

		doc, err := svc.GetEcommerceSettings(ctx, storeID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if doc == nil {
			// No document yet: the storefront has not been set up.
			writeJSON(w, http.StatusOK, map[string]any{"data": nil, "setup_required": true})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": doc, "setup_required": false})
	}
}

func updateEcommerceSettingsHandler(svc *service.SettingsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/stores/{storeId}/ecommerce-settings")
		defer span.End()

		storeID, err := parseIDParam(r, chi.URLParam(r, "storeId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid store id")
			return
		}

		var patch domain.EcommerceSettings
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		doc, err := svc.UpdateEcommerceSettings(ctx, storeID, &patch)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// ============================================================
// Organization settings
// ============================================================

func getOrganizationSettingsHandler(svc *service.SettingsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/organization/settings")
		defer span.End()

		doc, err := svc.GetOrganizationSettings(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func updateOrganizationSettingsHandler(svc *service.SettingsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/organization/settings")
		defer span.End()

		var patch domain.OrganizationSettingsDoc
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		doc, err := svc.UpdateOrganizationSettings(ctx, &patch)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}
