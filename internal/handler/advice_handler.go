package handler

import (
	"net/http"

	"github.com/boddenberg/controletok-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// 6. Consultor IA
// ============================================================

func requestAdviceHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/advice")
		defer span.End()

		advice, err := ctrl.RequestAdvice(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, advice)
	}
}

// lastAdviceHandler answers 204 until the session has received an advice.
func lastAdviceHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		advice, err := ctrl.LastAdvice()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if advice == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, advice)
	}
}
