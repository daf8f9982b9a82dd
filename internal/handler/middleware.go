package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/boddenberg/controletok-go/internal/service"
	"go.uber.org/zap"
)

type contextKey string

const emailKey contextKey = "email"

// JWTAuthMiddleware validates Bearer tokens and injects the session e-mail
// into context. A valid token whose owner no longer holds the active session
// (logged out or replaced) is rejected too.
func JWTAuthMiddleware(tokens *service.TokenService, ctrl *service.Controller, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			if !ctrl.IsCurrent(claims.Sub) {
				logger.Warn("auth: token does not own the active session",
					zap.String("path", r.URL.Path),
					zap.String("email", claims.Sub),
				)
				writeError(w, http.StatusUnauthorized, "Sessão encerrada")
				return
			}

			ctx := context.WithValue(r.Context(), emailKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext extracts the authenticated e-mail from context.
func EmailFromContext(ctx context.Context) string {
	v, _ := ctx.Value(emailKey).(string)
	return v
}
