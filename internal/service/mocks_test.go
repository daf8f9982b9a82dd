package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/infra/cache"
	"github.com/boddenberg/controletok-go/internal/infra/observability"
	"github.com/boddenberg/controletok-go/internal/infra/resilience"
	"github.com/boddenberg/controletok-go/internal/infra/storage"
	"github.com/boddenberg/controletok-go/internal/port"
	"github.com/boddenberg/controletok-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

// spyStore wraps the in-memory store, counts writes and can be told to fail.
type spyStore struct {
	*storage.Memory
	sets    atomic.Int32
	failSet atomic.Bool
	failGet atomic.Bool
}

var errDiskFull = errors.New("quota exceeded")

func newSpyStore() *spyStore {
	return &spyStore{Memory: storage.NewMemory()}
}

func (s *spyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.failGet.Load() {
		return nil, false, errDiskFull
	}
	return s.Memory.Get(ctx, key)
}

func (s *spyStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet.Load() {
		return errDiskFull
	}
	s.sets.Add(1)
	return s.Memory.Set(ctx, key, value)
}

type mockGenerator struct {
	text  string
	err   error
	calls atomic.Int32
}

func (m *mockGenerator) Generate(_ context.Context, _ *domain.GenerationRequest) (*domain.GenerationResponse, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.GenerationResponse{
		Text:       m.text,
		TokensUsed: domain.TokenUsage{PromptTokens: 300, CompletionTokens: 120, TotalTokens: 420},
	}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, e domain.ChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) types() []domain.ChangeType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.ChangeType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

var confirmYes = port.ConfirmFunc(func(context.Context, string) bool { return true })

// --- Fixtures ---

type fixture struct {
	store    *spyStore
	gen      *mockGenerator
	notifier *recordingNotifier
	metrics  *observability.Metrics
	ctrl     *service.Controller
}

func sequentialIDs() func() string {
	var n atomic.Int32
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

func newAdvisor(gen port.TextGenerator, metrics *observability.Metrics) *service.Advisor {
	return service.NewAdvisor(
		gen,
		cache.New[string](5*time.Minute),
		resilience.NewBulkhead(4),
		metrics,
		zap.NewNop(),
	)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    newSpyStore(),
		gen:      &mockGenerator{text: "**Diagnóstico**: saldo positivo."},
		notifier: &recordingNotifier{},
		metrics:  observability.NewMetrics(),
	}
	f.ctrl = service.NewController(
		f.store,
		service.NewSimulatedAuthenticator(0, zap.NewNop()),
		newAdvisor(f.gen, f.metrics),
		f.notifier,
		f.metrics,
		zap.NewNop(),
		service.WithIDGenerator(sequentialIDs()),
		service.WithColorPicker(func() int { return 1 }),
		service.WithClock(func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }),
	)
	return f
}

func (f *fixture) login(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := f.ctrl.Login(context.Background(), domain.Credentials{Email: email, Password: "123456"})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return u
}
