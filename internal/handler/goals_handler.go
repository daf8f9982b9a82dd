package handler

import (
	"net/http"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ============================================================
// 5. Metas
// ============================================================

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func listGoalsHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		goals, err := ctrl.Goals()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.GoalStatus]{Data: goals, Total: len(goals)})
	}
}

func addGoalHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/goals")
		defer span.End()

		var in domain.GoalInput
		if !decodeBody(w, r, &in) {
			return
		}

		st, err := ctrl.AddGoal(ctx, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, st)
	}
}

func depositHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/goals/{id}/deposit")
		defer span.End()

		var req depositRequest
		if !decodeBody(w, r, &req) {
			return
		}

		st, err := ctrl.Deposit(ctx, chi.URLParam(r, "id"), req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func deleteGoalHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/goals/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		deleted, err := ctrl.DeleteGoal(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted, ID: id})
	}
}
