package analytics_test

import (
	"testing"

	"github.com/boddenberg/controletok-go/internal/analytics"
	"github.com/boddenberg/controletok-go/internal/domain"

	"github.com/shopspring/decimal"
)

func tx(id string, amount string, typ domain.TransactionType, category, date string, ctx domain.Context) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Description: "tx " + id,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    category,
		Date:        mustDate(date),
		Context:     ctx,
	}
}

func mustDate(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", name, want, got)
	}
}

func TestComputeSummary_SalaryAndRent(t *testing.T) {
	txs := []domain.Transaction{
		tx("1", "5000", domain.TypeIncome, "Salário", "2024-03-01", domain.ContextPersonal),
		tx("2", "1500", domain.TypeExpense, "Moradia", "2024-03-05", domain.ContextPersonal),
	}

	s := analytics.ComputeSummary(txs, domain.ContextPersonal)

	assertDecimal(t, "income", s.Income, "5000")
	assertDecimal(t, "expense", s.Expense, "1500")
	assertDecimal(t, "balance", s.Balance, "3500")
}

func TestComputeSummary_Empty(t *testing.T) {
	for _, ctx := range []domain.Context{domain.ContextPersonal, domain.ContextBusiness} {
		s := analytics.ComputeSummary(nil, ctx)
		assertDecimal(t, "income", s.Income, "0")
		assertDecimal(t, "expense", s.Expense, "0")
		assertDecimal(t, "balance", s.Balance, "0")
	}
}

func TestComputeSummary_NegativeBalanceIsNotClamped(t *testing.T) {
	txs := []domain.Transaction{
		tx("1", "100", domain.TypeIncome, "Vendas", "2024-03-01", domain.ContextPersonal),
		tx("2", "250.75", domain.TypeExpense, "Lazer", "2024-03-02", domain.ContextPersonal),
	}

	s := analytics.ComputeSummary(txs, domain.ContextPersonal)
	assertDecimal(t, "balance", s.Balance, "-150.75")
}

func TestComputeSummary_ContextIsolationAndRefiltering(t *testing.T) {
	txs := domain.DemoTransactions()
	txs = append(txs, tx("7", "999", domain.TypeExpense, "Marketing", "2023-11-02", domain.ContextBusiness))

	for _, ctx := range []domain.Context{domain.ContextPersonal, domain.ContextBusiness} {
		full := analytics.ComputeSummary(txs, ctx)
		filtered := analytics.ComputeSummary(analytics.FilterByContext(txs, ctx), ctx)
		twice := analytics.ComputeSummary(analytics.FilterByContext(analytics.FilterByContext(txs, ctx), ctx), ctx)

		if !full.Balance.Equal(full.Income.Sub(full.Expense)) {
			t.Errorf("%s: balance %s != income - expense", ctx, full.Balance)
		}
		if !full.Income.Equal(filtered.Income) || !full.Expense.Equal(filtered.Expense) {
			t.Errorf("%s: pre-filtered summary differs: %+v vs %+v", ctx, full, filtered)
		}
		if !filtered.Balance.Equal(twice.Balance) {
			t.Errorf("%s: re-filtering changed the summary", ctx)
		}
	}

	personal := analytics.ComputeSummary(txs, domain.ContextPersonal)
	assertDecimal(t, "personal income", personal.Income, "5000")
	assertDecimal(t, "personal expense", personal.Expense, "2150.50")

	business := analytics.ComputeSummary(txs, domain.ContextBusiness)
	assertDecimal(t, "business expense", business.Expense, "1759")
}

func TestComputeCategoryBreakdown_SortedAndSumsToExpense(t *testing.T) {
	txs := []domain.Transaction{
		tx("1", "5000", domain.TypeIncome, "Salário", "2024-01-01", domain.ContextPersonal),
		tx("2", "100", domain.TypeExpense, "Lazer", "2024-01-02", domain.ContextPersonal),
		tx("3", "1500", domain.TypeExpense, "Moradia", "2024-01-03", domain.ContextPersonal),
		tx("4", "200.25", domain.TypeExpense, "Alimentação", "2024-01-04", domain.ContextPersonal),
		tx("5", "120", domain.TypeExpense, "Lazer", "2024-02-01", domain.ContextPersonal),
	}

	got := analytics.ComputeCategoryBreakdown(txs)

	want := []struct {
		category string
		amount   string
	}{
		{"Moradia", "1500"},
		{"Lazer", "220"},
		{"Alimentação", "200.25"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d (%+v)", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Category != w.category {
			t.Errorf("position %d: expected %s, got %s", i, w.category, got[i].Category)
		}
		assertDecimal(t, w.category, got[i].Amount, w.amount)
	}

	for i := 1; i < len(got); i++ {
		if got[i].Amount.GreaterThan(got[i-1].Amount) {
			t.Errorf("breakdown not non-increasing at %d", i)
		}
	}

	sum := decimal.Zero
	for _, c := range got {
		sum = sum.Add(c.Amount)
	}
	expense := analytics.ComputeSummary(txs, domain.ContextPersonal).Expense
	if !sum.Equal(expense) {
		t.Errorf("breakdown sum %s != total expense %s", sum, expense)
	}
}

func TestComputeCategoryBreakdown_TiesKeepEncounterOrder(t *testing.T) {
	txs := []domain.Transaction{
		tx("1", "50", domain.TypeExpense, "Transporte", "2024-01-01", domain.ContextPersonal),
		tx("2", "50", domain.TypeExpense, "Saúde", "2024-01-02", domain.ContextPersonal),
		tx("3", "50", domain.TypeExpense, "Educação", "2024-01-03", domain.ContextPersonal),
	}

	for run := 0; run < 5; run++ {
		got := analytics.ComputeCategoryBreakdown(txs)
		if got[0].Category != "Transporte" || got[1].Category != "Saúde" || got[2].Category != "Educação" {
			t.Fatalf("run %d: unexpected tie order %+v", run, got)
		}
	}
}

func TestComputeCategoryBreakdown_NoExpenses(t *testing.T) {
	txs := []domain.Transaction{
		tx("1", "10", domain.TypeIncome, "Vendas", "2024-01-01", domain.ContextPersonal),
	}
	if got := analytics.ComputeCategoryBreakdown(txs); len(got) != 0 {
		t.Errorf("expected empty breakdown, got %+v", got)
	}
}

func TestCategoryShares(t *testing.T) {
	shares := analytics.CategoryShares([]domain.CategoryTotal{
		{Category: "Moradia", Amount: decimal.NewFromInt(75)},
		{Category: "Lazer", Amount: decimal.NewFromInt(25)},
	})
	if shares[0].Percentage != 75 || shares[1].Percentage != 25 {
		t.Errorf("unexpected shares %+v", shares)
	}

	zero := analytics.CategoryShares([]domain.CategoryTotal{{Category: "Outros", Amount: decimal.Zero}})
	if zero[0].Percentage != 0 {
		t.Errorf("expected 0%% for zero total, got %v", zero[0].Percentage)
	}
}

func TestComputeMonthlyTrend_MergesAndOrders(t *testing.T) {
	txs := []domain.Transaction{
		tx("1", "300", domain.TypeExpense, "Lazer", "2024-02-20", domain.ContextPersonal),
		tx("2", "1000", domain.TypeIncome, "Salário", "2024-01-05", domain.ContextPersonal),
		tx("3", "200", domain.TypeExpense, "Lazer", "2024-02-01", domain.ContextPersonal),
		tx("4", "50", domain.TypeExpense, "Lazer", "2024-01-31", domain.ContextPersonal),
	}

	got := analytics.ComputeMonthlyTrend(txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 months, got %d", len(got))
	}
	if got[0].Month != "2024-01" || got[1].Month != "2024-02" {
		t.Errorf("unexpected order: %s, %s", got[0].Month, got[1].Month)
	}
	if got[0].Label != "JAN" || got[1].Label != "FEV" {
		t.Errorf("unexpected labels: %s, %s", got[0].Label, got[1].Label)
	}
	assertDecimal(t, "jan income", got[0].Income, "1000")
	assertDecimal(t, "jan expense", got[0].Expense, "50")
	assertDecimal(t, "feb expense", got[1].Expense, "500")
}

func TestComputeMonthlyTrend_KeepsLastSixMonths(t *testing.T) {
	dates := []string{
		"2024-05-10", "2023-11-01", "2024-01-15", "2023-12-24",
		"2024-03-03", "2024-02-14", "2024-04-01", "2023-10-09",
	}
	var txs []domain.Transaction
	for i, d := range dates {
		txs = append(txs, tx(string(rune('a'+i)), "10", domain.TypeIncome, "Salário", d, domain.ContextPersonal))
	}

	got := analytics.ComputeMonthlyTrend(txs)
	if len(got) != analytics.TrendWindow {
		t.Fatalf("expected %d months, got %d", analytics.TrendWindow, len(got))
	}
	wantMonths := []string{"2023-12", "2024-01", "2024-02", "2024-03", "2024-04", "2024-05"}
	for i, m := range wantMonths {
		if got[i].Month != m {
			t.Errorf("position %d: expected %s, got %s", i, m, got[i].Month)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Month <= got[i-1].Month {
			t.Errorf("trend not strictly ascending at %d", i)
		}
	}
}

func TestComputeMonthlyTrend_SameMonthDifferentYears(t *testing.T) {
	txs := []domain.Transaction{
		tx("1", "10", domain.TypeIncome, "Salário", "2023-10-01", domain.ContextPersonal),
		tx("2", "20", domain.TypeIncome, "Salário", "2024-10-01", domain.ContextPersonal),
	}

	got := analytics.ComputeMonthlyTrend(txs)
	if len(got) != 2 {
		t.Fatalf("expected October 2023 and October 2024 as separate buckets, got %+v", got)
	}
	if got[0].Label != "OUT" || got[1].Label != "OUT" {
		t.Errorf("expected OUT labels, got %s and %s", got[0].Label, got[1].Label)
	}
}

func TestComputeMonthlyTrend_Empty(t *testing.T) {
	if got := analytics.ComputeMonthlyTrend(nil); len(got) != 0 {
		t.Errorf("expected empty trend, got %+v", got)
	}
}

func TestSearch(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Description: "Supermercado", Category: "Alimentação"},
		{ID: "2", Description: "Uber", Category: "Transporte"},
		{ID: "3", Description: "Cinema", Category: "Lazer"},
	}

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"MERC", []string{"1"}},
		{"transp", []string{"2"}},
		{"  lazer ", []string{"3"}},
		{"nada", nil},
	}
	for _, tt := range tests {
		got := analytics.Search(txs, tt.term)
		if len(got) != len(tt.want) {
			t.Errorf("term %q: expected %v, got %d results", tt.term, tt.want, len(got))
			continue
		}
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Errorf("term %q: position %d expected %s, got %s", tt.term, i, id, got[i].ID)
			}
		}
	}
}

func TestSortByDateDesc(t *testing.T) {
	txs := []domain.Transaction{
		tx("old", "1", domain.TypeIncome, "Salário", "2023-01-01", domain.ContextPersonal),
		tx("new", "1", domain.TypeIncome, "Salário", "2024-06-01", domain.ContextPersonal),
		tx("mid-a", "1", domain.TypeIncome, "Salário", "2023-06-01", domain.ContextPersonal),
		tx("mid-b", "1", domain.TypeIncome, "Salário", "2023-06-01", domain.ContextPersonal),
	}

	got := analytics.SortByDateDesc(txs)
	want := []string{"new", "mid-a", "mid-b", "old"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
	if txs[0].ID != "old" {
		t.Error("input slice was reordered")
	}
}

func TestFilterByContext_DoesNotMixContexts(t *testing.T) {
	txs := domain.DemoTransactions()
	for _, got := range analytics.FilterByContext(txs, domain.ContextBusiness) {
		if got.Context != domain.ContextBusiness {
			t.Errorf("transaction %s leaked into business view", got.ID)
		}
	}
	if n := len(analytics.FilterByContext(txs, domain.ContextPersonal)); n != 3 {
		t.Errorf("expected 3 personal transactions, got %d", n)
	}
}
