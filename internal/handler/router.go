package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/infra/observability"
	"github.com/boddenberg/controletok-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// HealthCheck is a named dependency probed by /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	ctrl *service.Controller,
	tokens *service.TokenService,
	checks []HealthCheck,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(checks))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Autenticação / sessão
		// =============================================
		r.Post("/auth/login", loginHandler(ctrl, tokens, logger))
		r.Post("/auth/register", registerHandler(ctrl, tokens, logger))
		r.Get("/session", sessionHandler(ctrl, logger))

		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(tokens, ctrl, logger))

			r.Post("/auth/logout", logoutHandler(ctrl, logger))

			// =============================================
			// 2. Contexto contábil (PF / PJ)
			// =============================================
			r.Get("/context", getContextHandler(ctrl, logger))
			r.Put("/context", setContextHandler(ctrl, logger))

			// =============================================
			// 3. Transações
			// =============================================
			r.Get("/transactions", listTransactionsHandler(ctrl, logger))
			r.Post("/transactions", addTransactionHandler(ctrl, logger))
			r.Delete("/transactions/{id}", deleteTransactionHandler(ctrl, logger))

			// =============================================
			// 4. Visões do painel
			// =============================================
			r.Get("/summary", summaryHandler(ctrl, logger))
			r.Get("/categories", categoriesHandler(ctrl, logger))
			r.Get("/categories/breakdown", breakdownHandler(ctrl, logger))
			r.Get("/trend", trendHandler(ctrl, logger))
			r.Get("/dashboard", dashboardHandler(ctrl, logger))

			// =============================================
			// 5. Metas
			// =============================================
			r.Get("/goals", listGoalsHandler(ctrl, logger))
			r.Post("/goals", addGoalHandler(ctrl, logger))
			r.Post("/goals/{id}/deposit", depositHandler(ctrl, logger))
			r.Delete("/goals/{id}", deleteGoalHandler(ctrl, logger))

			// =============================================
			// 6. Consultor IA
			// =============================================
			r.Post("/advice", requestAdviceHandler(ctrl, logger))
			r.Get("/advice/last", lastAdviceHandler(ctrl, logger))
			r.Get("/metrics/advice", adviceMetricsHandler(metrics))

			// =============================================
			// 7. Perfil / tema
			// =============================================
			r.Get("/profile", getProfileHandler(ctrl, logger))
			r.Put("/profile", updateProfileHandler(ctrl, logger))
			r.Get("/theme", getThemeHandler(ctrl, logger))
			r.Put("/theme", setThemeHandler(ctrl, logger))
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "controletok-api", Status: "healthy", LastChecked: now},
		}
		for _, c := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			start := time.Now()
			err := c.Ping(ctx)
			cancel()

			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name:        c.Name,
				Status:      status,
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: now,
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = s.Status
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func adviceMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetAdviceSnapshot())
	}
}
