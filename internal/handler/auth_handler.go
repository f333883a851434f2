package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Authentication — POST /v1/auth/login
// ============================================================

func loginHandler(svc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := svc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
