// Package service holds the session controller and its collaborators:
// authentication, JWT session tokens and the financial advisor.
package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/infra/observability"
	"github.com/boddenberg/controletok-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/controller")

// DeleteTransactionPrompt is the question sent to the Confirmer.
const DeleteTransactionPrompt = "Tem certeza que deseja excluir esta transação?"

// Controller owns the single active session of the process: the logged-in
// user, the active accounting context and both collections. Every mutation
// is persisted through the KVStore before it returns.
type Controller struct {
	store    port.KVStore
	auth     port.Authenticator
	advisor  *Advisor
	notifier port.ChangeNotifier
	metrics  *observability.Metrics
	logger   *zap.Logger

	newID      func() string
	colorIndex func() int
	now        func() time.Time

	mu           sync.Mutex
	user         *domain.User // nil = LoggedOut
	context      domain.Context
	transactions []domain.Transaction
	goals        []domain.Goal
	lastAdvice   *domain.Advice
	adviceSeq    uint64 // last sequence handed out
	adviceShown  uint64 // sequence of lastAdvice
}

// Option customises a Controller.
type Option func(*Controller)

// WithIDGenerator replaces the UUID generator for new entities.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// WithColorPicker replaces the palette index source for new goals.
func WithColorPicker(fn func() int) Option {
	return func(c *Controller) { c.colorIndex = fn }
}

// WithClock replaces time.Now for event timestamps.
func WithClock(fn func() time.Time) Option {
	return func(c *Controller) { c.now = fn }
}

// NewController wires the controller. notifier may be nil.
func NewController(
	store port.KVStore,
	auth port.Authenticator,
	advisor *Advisor,
	notifier port.ChangeNotifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts ...Option,
) *Controller {
	c := &Controller{
		store:      store,
		auth:       auth,
		advisor:    advisor,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
		newID:      uuid.NewString,
		colorIndex: func() int { return rand.IntN(len(domain.Palette)) },
		now:        time.Now,
		context:    domain.DefaultContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ============================================================
// Sessão
// ============================================================

// Login authenticates creds and opens the user's session. A session that is
// already open is replaced.
func (c *Controller) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Controller.Login")
	defer span.End()

	start := time.Now()
	defer func() { c.metrics.RecordDuration("login", time.Since(start)) }()

	user, err := c.auth.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	return c.open(ctx, user)
}

// Restore reopens the session saved in the current-user pointer without
// authenticating again. ok is false when no pointer is stored.
func (c *Controller) Restore(ctx context.Context) (user *domain.User, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "Controller.Restore")
	defer span.End()

	saved, found, err := loadJSON[domain.User](ctx, c.store, currentUserKey)
	if err != nil {
		c.metrics.IncrStorageError("restore")
		return nil, false, err
	}
	if !found || domain.NormalizeEmail(saved.Email) == "" {
		return nil, false, nil
	}

	user, err = c.open(ctx, &saved)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// open loads both collections for user, seeding the demo transactions on the
// very first login of that e-mail, and installs the session.
func (c *Controller) open(ctx context.Context, u *domain.User) (*domain.User, error) {
	user := *u
	user.Email = domain.NormalizeEmail(user.Email)
	ctx, span := tracer.Start(ctx, "Controller.open")
	defer span.End()
	span.SetAttributes(attribute.String("user.email", user.Email))

	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		txs    []domain.Transaction
		goals  []domain.Goal
		seeded bool
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stored, found, err := loadJSON[[]domain.Transaction](gCtx, c.store, transactionsKey(user.Email))
		if err != nil {
			return err
		}
		if !found {
			txs = domain.DemoTransactions()
			seeded = true
			return nil
		}
		txs = normalizeLoaded(stored)
		return nil
	})

	g.Go(func() error {
		stored, _, err := loadJSON[[]domain.Goal](gCtx, c.store, goalsKey(user.Email))
		if err != nil {
			return err
		}
		if stored == nil {
			stored = []domain.Goal{}
		}
		goals = stored
		return nil
	})

	if err := g.Wait(); err != nil {
		c.metrics.IncrStorageError("login")
		c.logger.Error("failed to load session data",
			zap.String("email", user.Email),
			zap.Error(err),
		)
		return nil, err
	}

	if seeded {
		if err := saveJSON(ctx, c.store, transactionsKey(user.Email), txs); err != nil {
			c.metrics.IncrStorageError("seed")
			return nil, err
		}
		c.logger.Info("demo transactions seeded", zap.String("email", user.Email), zap.Int("count", len(txs)))
	}

	if err := saveJSON(ctx, c.store, currentUserKey, user); err != nil {
		c.metrics.IncrStorageError("login")
		return nil, err
	}

	if c.user != nil && c.user.Email != user.Email {
		c.logger.Info("session replaced", zap.String("previous", c.user.Email), zap.String("email", user.Email))
	}

	c.user = &user
	c.context = domain.DefaultContext
	c.transactions = txs
	c.goals = goals
	c.lastAdvice = nil
	c.adviceShown = c.adviceSeq

	c.metrics.IncrLogin()
	c.logger.Info("session opened",
		zap.String("email", user.Email),
		zap.Int("transactions", len(txs)),
		zap.Int("goals", len(goals)),
		zap.Bool("seeded", seeded),
	)

	out := user
	return &out, nil
}

// Logout closes the session and removes the current-user pointer. Stored
// per-user data is kept. Logging out while logged out is a no-op.
func (c *Controller) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Controller.Logout")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil
	}
	if err := c.store.Remove(ctx, currentUserKey); err != nil {
		c.metrics.IncrStorageError("logout")
		return fmt.Errorf("remove %s: %w", currentUserKey, err)
	}

	c.logger.Info("session closed", zap.String("email", c.user.Email))
	c.user = nil
	c.context = domain.DefaultContext
	c.transactions = nil
	c.goals = nil
	c.lastAdvice = nil
	c.adviceShown = c.adviceSeq
	return nil
}

// CurrentUser returns a copy of the logged-in user.
func (c *Controller) CurrentUser() (*domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil, domain.ErrNotLoggedIn
	}
	u := *c.user
	return &u, nil
}

// IsCurrent reports whether email owns the active session.
func (c *Controller) IsCurrent(email string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.user != nil && c.user.Email == domain.NormalizeEmail(email)
}

// ============================================================
// Contexto contábil
// ============================================================

// SetContext switches the active accounting context of the session.
func (c *Controller) SetContext(accounting domain.Context) error {
	if !accounting.Valid() {
		return &domain.ErrValidation{Field: "context", Message: "must be pf or pj"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return domain.ErrNotLoggedIn
	}
	c.context = accounting
	return nil
}

func (c *Controller) Context() (domain.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return "", domain.ErrNotLoggedIn
	}
	return c.context, nil
}

// Session describes the open session, including the stored theme.
func (c *Controller) Session(ctx context.Context) (*domain.SessionInfo, error) {
	user, err := c.CurrentUser()
	if err != nil {
		return nil, err
	}
	accounting, err := c.Context()
	if err != nil {
		return nil, err
	}
	theme, err := c.Theme(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.SessionInfo{User: user, Context: accounting, Theme: theme}, nil
}

// ============================================================
// Helpers
// ============================================================

// emit notifies after a persisted mutation. Failures are only logged.
func (c *Controller) emit(ctx context.Context, event domain.ChangeEvent) {
	if c.notifier == nil {
		return
	}
	if event.At.IsZero() {
		event.At = c.now().UTC()
	}
	if err := c.notifier.Notify(ctx, event); err != nil {
		c.logger.Warn("change notification failed",
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}

// persistErr counts and logs a failed persist, then returns err unchanged.
func (c *Controller) persistErr(op string, err error) error {
	c.metrics.IncrStorageError(op)
	c.logger.Error("persist failed", zap.String("operation", op), zap.Error(err))
	return err
}

func (c *Controller) mutated(op string, start time.Time) {
	c.metrics.IncrMutation(op)
	c.metrics.RecordDuration(op, time.Since(start))
}
