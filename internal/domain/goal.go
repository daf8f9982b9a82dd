package domain

import "github.com/shopspring/decimal"

// ============================================================
// Metas financeiras
// ============================================================

// GoalIcon is the symbolic tag a goal is displayed with.
type GoalIcon string

const (
	IconTrophy GoalIcon = "trophy"
	IconRocket GoalIcon = "rocket"
	IconCar    GoalIcon = "car"
	IconHome   GoalIcon = "home"
	IconPlane  GoalIcon = "plane"
	IconTarget GoalIcon = "target"
)

// GoalIcons lists every icon in display order.
var GoalIcons = []GoalIcon{IconTrophy, IconRocket, IconCar, IconHome, IconPlane, IconTarget}

func (i GoalIcon) Valid() bool {
	for _, known := range GoalIcons {
		if i == known {
			return true
		}
	}
	return false
}

// ColorTag is a display-style tag from the fixed goal palette.
type ColorTag string

// Palette holds the gradient tags a new goal is coloured with.
var Palette = []ColorTag{
	"from-violet-500 to-purple-600",
	"from-emerald-400 to-teal-500",
	"from-blue-500 to-indigo-600",
	"from-rose-500 to-pink-600",
	"from-amber-400 to-orange-500",
}

// Goal is a savings target. CurrentAmount only grows, through deposits, and
// may exceed TargetAmount.
type Goal struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      Date            `json:"deadline"`
	Icon          GoalIcon        `json:"icon"`
	Color         ColorTag        `json:"color"`
}

// GoalInput is the creation payload for a goal.
type GoalInput struct {
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      Date            `json:"deadline"`
	Icon          GoalIcon        `json:"icon,omitempty"`
}

// GoalStatus is a goal together with its derived progress figures.
type GoalStatus struct {
	Goal
	Progress  int             `json:"progress"`
	Remaining decimal.Decimal `json:"remaining"`
	Reached   bool            `json:"reached"`
}
