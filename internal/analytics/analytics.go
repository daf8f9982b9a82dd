// Package analytics turns a transaction collection into the derived views the
// dashboard shows: totals, expense breakdown by category and the monthly trend.
//
// Every function here is pure. Inputs are never modified and no function fails
// on well-formed input.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"

	"github.com/shopspring/decimal"
)

// TrendWindow is the number of most recent months kept by ComputeMonthlyTrend.
const TrendWindow = 6

var monthLabels = [...]string{"JAN", "FEV", "MAR", "ABR", "MAI", "JUN", "JUL", "AGO", "SET", "OUT", "NOV", "DEZ"}

// MonthLabel returns the pt-BR short label of m ("OUT" for October).
func MonthLabel(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthLabels[m-1]
}

// FilterByContext returns the transactions filed under ctx, in input order.
func FilterByContext(txs []domain.Transaction, ctx domain.Context) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Context == ctx {
			out = append(out, tx)
		}
	}
	return out
}

// ComputeSummary sums income and expense over the transactions of ctx.
// Balance is income minus expense and may be negative.
func ComputeSummary(txs []domain.Transaction, ctx domain.Context) domain.Summary {
	income := decimal.Zero
	expense := decimal.Zero
	for _, tx := range txs {
		if tx.Context != ctx {
			continue
		}
		switch tx.Type {
		case domain.TypeIncome:
			income = income.Add(tx.Amount)
		case domain.TypeExpense:
			expense = expense.Add(tx.Amount)
		}
	}
	return domain.Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// ComputeCategoryBreakdown groups expenses by category and orders the groups by
// total, largest first. Equal totals keep the order in which their category was
// first seen. Income never appears in the breakdown.
func ComputeCategoryBreakdown(txs []domain.Transaction) []domain.CategoryTotal {
	index := make(map[string]int)
	out := make([]domain.CategoryTotal, 0)
	for _, tx := range txs {
		if tx.Type != domain.TypeExpense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, domain.CategoryTotal{Category: tx.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// CategoryShares adds each category's percentage of the breakdown total.
// An all-zero breakdown yields zero percentages.
func CategoryShares(breakdown []domain.CategoryTotal) []domain.CategoryShare {
	total := decimal.Zero
	for _, c := range breakdown {
		total = total.Add(c.Amount)
	}

	out := make([]domain.CategoryShare, 0, len(breakdown))
	for _, c := range breakdown {
		pct := 0.0
		if total.IsPositive() {
			pct = c.Amount.Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
		out = append(out, domain.CategoryShare{CategoryTotal: c, Percentage: pct})
	}
	return out
}

type monthKey struct {
	year  int
	month time.Month
}

func (k monthKey) before(o monthKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	return k.month < o.month
}

// ComputeMonthlyTrend buckets transactions by calendar month and returns the
// most recent TrendWindow buckets in chronological order. Transactions without
// a date are skipped.
func ComputeMonthlyTrend(txs []domain.Transaction) []domain.MonthlyPoint {
	buckets := make(map[monthKey]*domain.MonthlyPoint)
	keys := make([]monthKey, 0)

	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		k := monthKey{year: tx.Date.Year(), month: tx.Date.Month()}
		p, ok := buckets[k]
		if !ok {
			p = &domain.MonthlyPoint{
				Month:   fmt.Sprintf("%04d-%02d", k.year, int(k.month)),
				Label:   MonthLabel(k.month),
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			}
			buckets[k] = p
			keys = append(keys, k)
		}
		switch tx.Type {
		case domain.TypeIncome:
			p.Income = p.Income.Add(tx.Amount)
		case domain.TypeExpense:
			p.Expense = p.Expense.Add(tx.Amount)
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })
	if len(keys) > TrendWindow {
		keys = keys[len(keys)-TrendWindow:]
	}

	out := make([]domain.MonthlyPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, *buckets[k])
	}
	return out
}

// Search keeps the transactions whose description or category contains term,
// ignoring case. An empty term keeps everything.
func Search(txs []domain.Transaction, term string) []domain.Transaction {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if term == "" ||
			strings.Contains(strings.ToLower(tx.Description), term) ||
			strings.Contains(strings.ToLower(tx.Category), term) {
			out = append(out, tx)
		}
	}
	return out
}

// SortByDateDesc returns a copy of txs ordered newest first. Same-day
// transactions keep their relative order.
func SortByDateDesc(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
