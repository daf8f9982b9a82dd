// Package planning implements the savings-goal progress model.
package planning

import (
	"strings"

	"github.com/boddenberg/controletok-go/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PickPalette returns the palette colour for index. Any int is accepted;
// negative values wrap like positive ones.
func PickPalette(index int) domain.ColorTag {
	n := len(domain.Palette)
	i := index % n
	if i < 0 {
		i += n
	}
	return domain.Palette[i]
}

// NewGoal validates in and builds a goal. The caller supplies the id and the
// palette index so the result is deterministic.
func NewGoal(id string, in domain.GoalInput, colorIndex int) (domain.Goal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Goal{}, &domain.ErrValidation{Field: "title", Message: "required"}
	}
	if !in.TargetAmount.IsPositive() {
		return domain.Goal{}, &domain.ErrPrecondition{Rule: "targetAmount must be greater than zero"}
	}
	if in.CurrentAmount.IsNegative() {
		return domain.Goal{}, &domain.ErrValidation{Field: "currentAmount", Message: "must not be negative"}
	}
	if in.Deadline.IsZero() {
		return domain.Goal{}, &domain.ErrValidation{Field: "deadline", Message: "required"}
	}
	icon := in.Icon
	if icon == "" {
		icon = domain.IconTrophy
	}
	if !icon.Valid() {
		return domain.Goal{}, &domain.ErrValidation{Field: "icon", Message: "unknown icon " + string(icon)}
	}

	return domain.Goal{
		ID:            id,
		Title:         title,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		Icon:          icon,
		Color:         PickPalette(colorIndex),
	}, nil
}

// ProgressPercent is round(current/target*100) capped at 100.
// A goal with a non-positive target reports 0.
func ProgressPercent(g domain.Goal) int {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	pct := g.CurrentAmount.Div(g.TargetAmount).Mul(hundred).Round(0).IntPart()
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}

// RemainingAmount is what is still missing to reach the target, never negative.
func RemainingAmount(g domain.Goal) decimal.Decimal {
	rem := g.TargetAmount.Sub(g.CurrentAmount)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// ApplyDeposit returns a copy of g with amount added to CurrentAmount.
// amount must be positive; g is returned unchanged with an error otherwise.
func ApplyDeposit(g domain.Goal, amount decimal.Decimal) (domain.Goal, error) {
	if !amount.IsPositive() {
		return g, &domain.ErrPrecondition{Rule: "deposit amount must be greater than zero"}
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	return g, nil
}

// Status bundles g with its derived figures.
func Status(g domain.Goal) domain.GoalStatus {
	return domain.GoalStatus{
		Goal:      g,
		Progress:  ProgressPercent(g),
		Remaining: RemainingAmount(g),
		Reached:   g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount),
	}
}
