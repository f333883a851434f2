package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Users
// ============================================================

func listUsersHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users")
		defer span.End()

		f := domain.UserFilter{
			Status: r.URL.Query().Get("status"),
			Search: r.URL.Query().Get("search"),
		}
		if v := r.URL.Query().Get("store_id"); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
				f.StoreID = &id
			}
		}
		page, pageSize := parsePagination(r)

		users, total, err := svc.ListUsers(ctx, f, page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeList(w, users, total, page, pageSize)
	}
}

func getUserHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}")
		defer span.End()

		userID, err := parseIDParam(r, chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		span.SetAttributes(attribute.Int64("user.id", userID))

		user, err := svc.GetUser(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func createUserHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users")
		defer span.End()

		var req struct {
			Email    string   `json:"email"`
			Name     string   `json:"name"`
			StoreID  *int64   `json:"store_id,omitempty"`
			Roles    []string `json:"roles,omitempty"`
			Status   string   `json:"status,omitempty"`
			Password string   `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := svc.CreateUser(ctx, &domain.User{
			Email:   req.Email,
			Name:    req.Name,
			StoreID: req.StoreID,
			Roles:   req.Roles,
			Status:  req.Status,
		}, req.Password)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

func updateUserHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/users/{userId}")
		defer span.End()

		userID, err := parseIDParam(r, chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		var u domain.User
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		u.ID = userID

		updated, err := svc.UpdateUser(ctx, &u)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteUserHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/users/{userId}")
		defer span.End()

		userID, err := parseIDParam(r, chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		if err := svc.DeleteUser(ctx, userID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func bulkUserStatusHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/bulk-status")
		defer span.End()

		var req struct {
			UserIDs []int64 `json:"user_ids"`
			Status  string  `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := svc.BulkUpdateStatus(ctx, req.UserIDs, req.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"updated": updated})
	}
}

// ============================================================
// Audit log
// ============================================================

func listAuditHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/audit")
		defer span.End()

		page, pageSize := parsePagination(r)
		entries, total, err := svc.ListAudit(ctx, page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeList(w, entries, total, page, pageSize)
	}
}
