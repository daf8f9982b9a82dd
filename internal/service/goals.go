package service

import (
	"context"
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/planning"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Goals lists the session's goals with their progress, in creation order.
func (c *Controller) Goals() ([]domain.GoalStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil, domain.ErrNotLoggedIn
	}
	out := make([]domain.GoalStatus, 0, len(c.goals))
	for _, g := range c.goals {
		out = append(out, planning.Status(g))
	}
	return out, nil
}

// AddGoal creates a goal with a palette colour from the injected picker.
func (c *Controller) AddGoal(ctx context.Context, in domain.GoalInput) (*domain.GoalStatus, error) {
	ctx, span := tracer.Start(ctx, "Controller.AddGoal")
	defer span.End()
	start := time.Now()

	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, domain.ErrNotLoggedIn
	}

	goal, err := planning.NewGoal(c.newID(), in, c.colorIndex())
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	email := c.user.Email

	next := make([]domain.Goal, 0, len(c.goals)+1)
	next = append(next, c.goals...)
	next = append(next, goal)

	if err := saveJSON(ctx, c.store, goalsKey(email), next); err != nil {
		c.mu.Unlock()
		return nil, c.persistErr("add_goal", err)
	}
	c.goals = next
	c.mu.Unlock()

	span.SetAttributes(attribute.String("goal.id", goal.ID))
	c.mutated("add_goal", start)
	c.logger.Info("goal added", zap.String("email", email), zap.String("id", goal.ID))
	c.emit(ctx, domain.ChangeEvent{Type: domain.ChangeGoalAdded, Email: email, EntityID: goal.ID})

	status := planning.Status(goal)
	return &status, nil
}

// Deposit adds amount to the goal's current amount. amount must be positive.
func (c *Controller) Deposit(ctx context.Context, id string, amount decimal.Decimal) (*domain.GoalStatus, error) {
	ctx, span := tracer.Start(ctx, "Controller.Deposit")
	defer span.End()
	span.SetAttributes(attribute.String("goal.id", id))
	start := time.Now()

	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, domain.ErrNotLoggedIn
	}

	idx := c.goalIndex(id)
	if idx < 0 {
		c.mu.Unlock()
		return nil, &domain.ErrNotFound{Resource: "goal", ID: id}
	}

	updated, err := planning.ApplyDeposit(c.goals[idx], amount)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	email := c.user.Email

	next := append([]domain.Goal(nil), c.goals...)
	next[idx] = updated

	if err := saveJSON(ctx, c.store, goalsKey(email), next); err != nil {
		c.mu.Unlock()
		return nil, c.persistErr("deposit", err)
	}
	c.goals = next
	c.mu.Unlock()

	c.mutated("deposit", start)
	c.logger.Info("goal deposit",
		zap.String("email", email),
		zap.String("id", id),
		zap.String("amount", amount.String()),
	)
	c.emit(ctx, domain.ChangeEvent{Type: domain.ChangeGoalDeposit, Email: email, EntityID: id})

	status := planning.Status(updated)
	return &status, nil
}

// DeleteGoal removes the goal with id. An unknown id is a no-op.
func (c *Controller) DeleteGoal(ctx context.Context, id string) (deleted bool, err error) {
	ctx, span := tracer.Start(ctx, "Controller.DeleteGoal")
	defer span.End()
	span.SetAttributes(attribute.String("goal.id", id))
	start := time.Now()

	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return false, domain.ErrNotLoggedIn
	}

	idx := c.goalIndex(id)
	if idx < 0 {
		c.mu.Unlock()
		return false, nil
	}
	email := c.user.Email

	next := make([]domain.Goal, 0, len(c.goals)-1)
	next = append(next, c.goals[:idx]...)
	next = append(next, c.goals[idx+1:]...)

	if err := saveJSON(ctx, c.store, goalsKey(email), next); err != nil {
		c.mu.Unlock()
		return false, c.persistErr("delete_goal", err)
	}
	c.goals = next
	c.mu.Unlock()

	c.mutated("delete_goal", start)
	c.logger.Info("goal deleted", zap.String("email", email), zap.String("id", id))
	c.emit(ctx, domain.ChangeEvent{Type: domain.ChangeGoalDeleted, Email: email, EntityID: id})
	return true, nil
}

// goalIndex must be called with c.mu held.
func (c *Controller) goalIndex(id string) int {
	for i, g := range c.goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}
