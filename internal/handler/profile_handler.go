package handler

import (
	"net/http"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// 7. Perfil / tema
// ============================================================

type themePayload struct {
	Theme domain.Theme `json:"theme"`
}

func getProfileHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctrl.CurrentUser()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func updateProfileHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/profile")
		defer span.End()

		var upd domain.ProfileUpdate
		if !decodeBody(w, r, &upd) {
			return
		}

		user, err := ctrl.UpdateProfile(ctx, upd)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func getThemeHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		theme, err := ctrl.Theme(r.Context())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, themePayload{Theme: theme})
	}
}

func setThemeHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req themePayload
		if !decodeBody(w, r, &req) {
			return
		}
		if err := ctrl.SetTheme(r.Context(), req.Theme); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}
