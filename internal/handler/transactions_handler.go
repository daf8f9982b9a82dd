package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/port"
	"github.com/boddenberg/controletok-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 2. Contexto contábil
// ============================================================

type contextRequest struct {
	Context string `json:"context"`
}

type contextResponse struct {
	Context domain.Context `json:"context"`
}

func getContextHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounting, err := ctrl.Context()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, contextResponse{Context: accounting})
	}
}

func setContextHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contextRequest
		if !decodeBody(w, r, &req) {
			return
		}

		accounting, err := domain.ParseContext(req.Context)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := ctrl.SetContext(accounting); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, contextResponse{Context: accounting})
	}
}

// ============================================================
// 3. Transações
// ============================================================

func listTransactionsHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		txs, err := ctrl.Transactions(service.TransactionFilter{Query: r.URL.Query().Get("q")})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.Transaction]{Data: txs, Total: len(txs)})
	}
}

func addTransactionHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		var in domain.TransactionInput
		if !decodeBody(w, r, &in) {
			return
		}

		tx, err := ctrl.AddTransaction(ctx, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

type deleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// deleteTransactionHandler only deletes with ?confirm=true; the query flag
// answers the controller's confirmation prompt.
func deleteTransactionHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/transactions/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
		span.SetAttributes(attribute.String("transaction.id", id), attribute.Bool("confirmed", confirmed))

		confirm := port.ConfirmFunc(func(context.Context, string) bool { return confirmed })

		deleted, err := ctrl.DeleteTransaction(ctx, id, confirm)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted, ID: id})
	}
}

// ============================================================
// 4. Visões do painel
// ============================================================

func summaryHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := ctrl.Summary()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

func categoriesHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := ctrl.Categories()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, cats)
	}
}

func breakdownHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		breakdown, err := ctrl.CategoryBreakdown()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.CategoryTotal]{Data: breakdown, Total: len(breakdown)})
	}
}

func trendHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trend, err := ctrl.MonthlyTrend()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.MonthlyPoint]{Data: trend, Total: len(trend)})
	}
}

func dashboardHandler(ctrl *service.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		dash, err := ctrl.Dashboard()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash)
	}
}
