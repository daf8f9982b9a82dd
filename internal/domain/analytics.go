package domain

import "github.com/shopspring/decimal"

// ============================================================
// Visões derivadas (não persistidas)
// ============================================================

// Summary is the income/expense/balance aggregate of one context.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// CategoryTotal is the summed expense of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// CategoryShare is a CategoryTotal with its percentage of total expense.
type CategoryShare struct {
	CategoryTotal
	Percentage float64 `json:"percentage"`
}

// MonthlyPoint is one calendar month of the trend chart.
type MonthlyPoint struct {
	Month   string          `json:"month"` // YYYY-MM
	Label   string          `json:"label"` // OUT, NOV...
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Dashboard bundles every derived view for the active context.
type Dashboard struct {
	Context           Context         `json:"context"`
	Summary           Summary         `json:"summary"`
	CategoryBreakdown []CategoryShare `json:"categoryBreakdown"`
	MonthlyTrend      []MonthlyPoint  `json:"monthlyTrend"`
	Recent            []Transaction   `json:"recent"`
}
