package handler

import (
	"net/http"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// 1. Autenticação
// ============================================================

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func loginHandler(ctrl *service.Controller, tokens *service.TokenService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var creds domain.Credentials
		if !decodeBody(w, r, &creds) {
			return
		}
		creds.Register = false

		user, err := ctrl.Login(ctx, creds)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := tokens.Issue(user)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func registerHandler(ctrl *service.Controller, tokens *service.TokenService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/register")
		defer span.End()

		var req registerRequest
		if !decodeBody(w, r, &req) {
			return
		}

		user, err := ctrl.Login(ctx, domain.Credentials{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Register: true,
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := tokens.Issue(user)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func logoutHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		if err := ctrl.Logout(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		logger.Info("logout", zap.String("email", EmailFromContext(ctx)))
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Sessão encerrada"})
	}
}

// sessionHandler answers 401 while nobody is logged in.
func sessionHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/session")
		defer span.End()

		info, err := ctrl.Session(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}
