package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/infra/cache"
	"github.com/boddenberg/controletok-go/internal/infra/observability"
	"github.com/boddenberg/controletok-go/internal/infra/resilience"
	"github.com/boddenberg/controletok-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var adviceTracer = otel.Tracer("service/advisor")

// Mensagens fixas devolvidas sem texto gerado.
const (
	MessageNoTransactions = "Adicione algumas transações para que eu possa analisar as finanças."
	MessageNoAnalysis     = "Não foi possível gerar uma análise no momento."
	MessageGeneratorError = "Desculpe, ocorreu um erro ao conectar com a IA. Verifique sua chave de API ou tente novamente mais tarde."
)

// Advisor turns a transaction set into a narrative assessment. It never
// fails: every problem becomes one of the fixed messages above.
type Advisor struct {
	generator port.TextGenerator // nil disables generation
	cache     port.Cache[string]
	bulkhead  *resilience.Bulkhead
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewAdvisor creates the advisor. generator may be nil.
func NewAdvisor(
	generator port.TextGenerator,
	cache port.Cache[string],
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Advisor {
	return &Advisor{
		generator: generator,
		cache:     cache,
		bulkhead:  bulkhead,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Advise analyses txs for the given context.
func (a *Advisor) Advise(ctx context.Context, txs []domain.Transaction, accounting domain.Context) *domain.Advice {
	ctx, span := adviceTracer.Start(ctx, "Advisor.Advise")
	defer span.End()
	span.SetAttributes(
		attribute.String("advice.context", string(accounting)),
		attribute.Int("transactions.count", len(txs)),
	)

	start := time.Now()
	defer func() {
		a.metrics.RecordDuration("advice", time.Since(start))
	}()

	advice := &domain.Advice{Context: accounting, GeneratedAt: a.now()}

	if len(txs) == 0 {
		a.metrics.IncrAdvice(observability.OutcomeEmpty)
		advice.Text = MessageNoTransactions
		advice.Fallback = true
		return advice
	}

	prompt := BuildPrompt(txs, accounting)
	key := cache.Key(string(accounting), prompt)

	if text, ok := a.cache.Get(key); ok {
		a.metrics.IncrCacheHit("advice")
		a.metrics.IncrAdvice(observability.OutcomeCached)
		advice.Text = text
		advice.Cached = true
		return advice
	}
	a.metrics.IncrCacheMiss("advice")

	text, err := a.generate(ctx, prompt, accounting)
	switch {
	case err != nil:
		a.logger.Error("advice generation failed",
			zap.String("context", string(accounting)),
			zap.Error(err),
		)
		span.RecordError(err)
		a.metrics.IncrExternalError("advice")
		a.metrics.IncrAdvice(observability.OutcomeError)
		advice.Text = MessageGeneratorError
		advice.Fallback = true
	case strings.TrimSpace(text) == "":
		a.metrics.IncrAdvice(observability.OutcomeFallback)
		advice.Text = MessageNoAnalysis
		advice.Fallback = true
	default:
		a.metrics.IncrAdvice(observability.OutcomeGenerated)
		a.cache.Set(key, text)
		advice.Text = text
	}
	return advice
}

func (a *Advisor) generate(ctx context.Context, prompt string, accounting domain.Context) (string, error) {
	if a.generator == nil {
		return "", &domain.ErrExternalService{Service: "advice", Err: fmt.Errorf("no text generator configured")}
	}

	if err := a.bulkhead.TryAcquire(); err != nil {
		a.logger.Debug("advice generator busy, waiting for a slot",
			zap.Int("in_flight", a.bulkhead.InFlight()),
		)
		if err := a.bulkhead.Acquire(ctx); err != nil {
			return "", fmt.Errorf("wait for generator slot: %w", err)
		}
	}
	defer a.bulkhead.Release()

	resp, err := a.generator.Generate(ctx, &domain.GenerationRequest{Prompt: prompt, Context: accounting})
	if err != nil {
		return "", err
	}
	a.metrics.RecordTokens(resp.TokensUsed.PromptTokens, resp.TokensUsed.CompletionTokens)
	return resp.Text, nil
}

// BuildPrompt renders the pt-BR consultant prompt, one line per transaction.
func BuildPrompt(txs []domain.Transaction, accounting domain.Context) string {
	lines := make([]string, 0, len(txs))
	for _, t := range txs {
		kind := "Despesa"
		if t.Type == domain.TypeIncome {
			kind = "Receita"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (%s) - R$ %s [%s]",
			t.Date, t.Description, t.Category, t.Amount.StringFixed(2), kind))
	}

	description := "uma pessoa física. Foque em economia doméstica, fundo de reserva e controle de gastos pessoais."
	focus := "pessoal"
	if accounting == domain.ContextBusiness {
		description = "uma empresa (Pessoa Jurídica). Foque em fluxo de caixa, margem de lucro, custos operacionais e impostos."
		focus = "negócios"
	}

	var b strings.Builder
	b.WriteString("Atue como um consultor financeiro experiente.\n")
	b.WriteString("Você está analisando as finanças de " + description + "\n\n")
	b.WriteString("Lista de transações recentes:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nPor favor, forneça:\n")
	b.WriteString("1. Um breve diagnóstico da saúde financeira atual (Saldo, Tendências).\n")
	b.WriteString("2. Identifique a categoria de maior impacto (custo ou receita principal).\n")
	b.WriteString("3. Dê 2 ou 3 dicas práticas e estratégicas para este contexto específico (" + focus + ").\n\n")
	b.WriteString("Seja conciso, profissional porém acessível, e use formatação Markdown (negrito, listas).")
	return b.String()
}
