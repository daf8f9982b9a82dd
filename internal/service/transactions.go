package service

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/controletok-go/internal/analytics"
	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// recentLimit is how many entries the dashboard lists.
const recentLimit = 5

// TransactionFilter narrows the history list.
type TransactionFilter struct {
	Query string // substring of description or category, case-insensitive
}

// AddTransaction validates in, stamps it with a new id and the active
// context, prepends it and persists the whole collection.
func (c *Controller) AddTransaction(ctx context.Context, in domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Controller.AddTransaction")
	defer span.End()
	start := time.Now()

	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, domain.ErrNotLoggedIn
	}
	if err := in.Validate(c.context); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	tx := domain.Transaction{
		ID:          c.newID(),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
		Date:        in.Date,
		Context:     c.context,
	}
	email := c.user.Email

	next := make([]domain.Transaction, 0, len(c.transactions)+1)
	next = append(next, tx)
	next = append(next, c.transactions...)

	if err := saveJSON(ctx, c.store, transactionsKey(email), next); err != nil {
		c.mu.Unlock()
		return nil, c.persistErr("add_transaction", err)
	}
	c.transactions = next
	c.mu.Unlock()

	span.SetAttributes(attribute.String("transaction.id", tx.ID), attribute.String("transaction.context", string(tx.Context)))
	c.mutated("add_transaction", start)
	c.logger.Info("transaction added",
		zap.String("email", email),
		zap.String("id", tx.ID),
		zap.String("context", string(tx.Context)),
		zap.String("type", string(tx.Type)),
	)
	c.emit(ctx, domain.ChangeEvent{
		Type:     domain.ChangeTransactionAdded,
		Email:    email,
		EntityID: tx.ID,
		Context:  tx.Context,
	})
	return &tx, nil
}

// DeleteTransaction removes the entry with id after confirmer agrees.
// A declined (or missing) confirmation returns ErrConfirmationRequired.
// An unknown id is a no-op: deleted is false, nothing is persisted.
func (c *Controller) DeleteTransaction(ctx context.Context, id string, confirmer port.Confirmer) (deleted bool, err error) {
	ctx, span := tracer.Start(ctx, "Controller.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))
	start := time.Now()

	owner, err := c.CurrentUser()
	if err != nil {
		return false, err
	}
	// Confirmer may block on the user, so it runs outside the lock.
	if confirmer == nil || !confirmer.Confirm(ctx, DeleteTransactionPrompt) {
		return false, domain.ErrConfirmationRequired
	}

	c.mu.Lock()
	// the session that asked for confirmation may have ended meanwhile
	if c.user == nil || c.user.Email != owner.Email {
		c.mu.Unlock()
		c.logger.Warn("delete: session changed while confirming, discarded",
			zap.String("email", owner.Email),
			zap.String("id", id),
		)
		return false, domain.ErrNotLoggedIn
	}

	idx := -1
	for i, t := range c.transactions {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		c.logger.Debug("delete: transaction not found, nothing to do", zap.String("id", id))
		return false, nil
	}

	removed := c.transactions[idx]
	email := owner.Email
	next := make([]domain.Transaction, 0, len(c.transactions)-1)
	next = append(next, c.transactions[:idx]...)
	next = append(next, c.transactions[idx+1:]...)

	if err := saveJSON(ctx, c.store, transactionsKey(email), next); err != nil {
		c.mu.Unlock()
		return false, c.persistErr("delete_transaction", err)
	}
	c.transactions = next
	c.mu.Unlock()

	c.mutated("delete_transaction", start)
	c.logger.Info("transaction deleted", zap.String("email", email), zap.String("id", id))
	c.emit(ctx, domain.ChangeEvent{
		Type:     domain.ChangeTransactionDeleted,
		Email:    email,
		EntityID: id,
		Context:  removed.Context,
	})
	return true, nil
}

// Transactions lists the active-context history, newest first.
func (c *Controller) Transactions(filter TransactionFilter) ([]domain.Transaction, error) {
	visible, _, err := c.visible()
	if err != nil {
		return nil, err
	}
	return analytics.SortByDateDesc(analytics.Search(visible, filter.Query)), nil
}

// ============================================================
// Visões derivadas do contexto ativo
// ============================================================

func (c *Controller) Summary() (domain.Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return domain.Summary{}, domain.ErrNotLoggedIn
	}
	return analytics.ComputeSummary(c.transactions, c.context), nil
}

func (c *Controller) CategoryBreakdown() ([]domain.CategoryTotal, error) {
	visible, _, err := c.visible()
	if err != nil {
		return nil, err
	}
	return analytics.ComputeCategoryBreakdown(visible), nil
}

func (c *Controller) MonthlyTrend() ([]domain.MonthlyPoint, error) {
	visible, _, err := c.visible()
	if err != nil {
		return nil, err
	}
	return analytics.ComputeMonthlyTrend(visible), nil
}

// Dashboard computes every view in one pass over the same snapshot.
func (c *Controller) Dashboard() (*domain.Dashboard, error) {
	visible, accounting, err := c.visible()
	if err != nil {
		return nil, err
	}

	recent := analytics.SortByDateDesc(visible)
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return &domain.Dashboard{
		Context:           accounting,
		Summary:           analytics.ComputeSummary(visible, accounting),
		CategoryBreakdown: analytics.CategoryShares(analytics.ComputeCategoryBreakdown(visible)),
		MonthlyTrend:      analytics.ComputeMonthlyTrend(visible),
		Recent:            recent,
	}, nil
}

// Categories returns the allowed categories of the active context by type.
func (c *Controller) Categories() (map[domain.TransactionType][]string, error) {
	accounting, err := c.Context()
	if err != nil {
		return nil, err
	}
	return map[domain.TransactionType][]string{
		domain.TypeIncome:  domain.CategoriesFor(accounting, domain.TypeIncome),
		domain.TypeExpense: domain.CategoriesFor(accounting, domain.TypeExpense),
	}, nil
}

// visible snapshots the active-context transactions under the lock.
func (c *Controller) visible() ([]domain.Transaction, domain.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil, "", domain.ErrNotLoggedIn
	}
	return analytics.FilterByContext(c.transactions, c.context), c.context, nil
}
