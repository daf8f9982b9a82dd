package observability

import (
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Advice outcomes used as the "outcome" label.
const (
	OutcomeGenerated = "generated"
	OutcomeCached    = "cached"
	OutcomeEmpty     = "empty"    // no transactions, generator not called
	OutcomeFallback  = "fallback" // generator returned no text
	OutcomeError     = "error"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operationDuration *prometheus.HistogramVec
	mutations         *prometheus.CounterVec
	storageErrors     *prometheus.CounterVec
	externalErrors    *prometheus.CounterVec
	adviceRequests    *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	tokensUsed        *prometheus.CounterVec
	logins            prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. A private registry lets tests call NewMetrics
// repeatedly without "duplicate collector" panics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "controletok_operation_duration_seconds",
				Help:    "Duration of controller operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controletok_mutations_total",
				Help: "Persisted mutations by operation.",
			},
			[]string{"operation"},
		),
		storageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controletok_storage_errors_total",
				Help: "Storage adapter failures by operation.",
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controletok_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		adviceRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controletok_advice_requests_total",
				Help: "Advice requests by outcome.",
			},
			[]string{"outcome"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controletok_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controletok_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controletok_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
		logins: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "controletok_logins_total",
				Help: "Successful logins.",
			},
		),
	}
}

// RecordDuration records the duration of a controller operation.
func (m *Metrics) RecordDuration(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) IncrMutation(operation string) {
	m.mutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrStorageError(operation string) {
	m.storageErrors.WithLabelValues(operation).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrAdvice counts an advice request by outcome (see Outcome* constants).
func (m *Metrics) IncrAdvice(outcome string) {
	m.adviceRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

func (m *Metrics) IncrLogin() {
	m.logins.Inc()
}

// MutationCount returns the cumulative count for one mutation label.
func (m *Metrics) MutationCount(operation string) float64 {
	return getCounterValue(m.mutations, operation)
}

// AdviceCount returns the cumulative count for one advice outcome.
func (m *Metrics) AdviceCount(outcome string) float64 {
	return getCounterValue(m.adviceRequests, outcome)
}

// GetAdviceSnapshot summarises advice metrics for GET /v1/metrics/advice.
func (m *Metrics) GetAdviceSnapshot() *domain.AdviceMetrics {
	generated := m.AdviceCount(OutcomeGenerated)
	cached := m.AdviceCount(OutcomeCached)
	empty := m.AdviceCount(OutcomeEmpty)
	fallback := m.AdviceCount(OutcomeFallback)
	failed := m.AdviceCount(OutcomeError)

	total := generated + cached + empty + fallback + failed
	tokens := getCounterValue(m.tokensUsed, "prompt") + getCounterValue(m.tokensUsed, "completion")
	hits := getCounterValue(m.cacheHits, "advice")
	misses := getCounterValue(m.cacheMisses, "advice")

	snap := &domain.AdviceMetrics{
		TotalRequests: int64(total),
		Period:        "all_time",
	}
	if total > 0 {
		snap.ErrorRate = failed / total
		snap.FallbackRate = (empty + fallback + failed) / total
	}
	if generated > 0 {
		snap.AvgTokensPerRequest = tokens / generated
	}
	if hits+misses > 0 {
		snap.CacheHitRate = hits / (hits + misses)
	}
	return snap
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
