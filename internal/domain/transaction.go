package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================
// Contexto contábil (PF / PJ)
// ============================================================

// Context is the accounting partition a transaction belongs to.
type Context string

const (
	ContextPersonal Context = "pf"
	ContextBusiness Context = "pj"
)

// DefaultContext is the context every fresh session starts in.
const DefaultContext = ContextPersonal

// Valid reports whether c is one of the known contexts.
func (c Context) Valid() bool {
	return c == ContextPersonal || c == ContextBusiness
}

// ParseContext accepts the wire values ("pf", "pj") and the long names
// ("personal", "business"), case-insensitively.
func ParseContext(s string) (Context, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pf", "personal", "pessoal":
		return ContextPersonal, nil
	case "pj", "business", "empresa":
		return ContextBusiness, nil
	}
	return "", &ErrValidation{Field: "context", Message: "must be pf or pj"}
}

// ============================================================
// Transações
// ============================================================

// TransactionType separates money in from money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single income or expense entry. Amount is always
// non-negative; Type carries the direction.
type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Date        Date            `json:"date"`
	Context     Context         `json:"context"`
}

// TransactionInput is what a caller supplies to create a transaction.
// ID and Context are never part of it: both are stamped by the session.
type TransactionInput struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Date        Date            `json:"date"`
}

// Validate checks the input against the category table of the context the
// transaction will be filed under.
func (in TransactionInput) Validate(ctx Context) error {
	if strings.TrimSpace(in.Description) == "" {
		return &ErrValidation{Field: "description", Message: "required"}
	}
	if !in.Amount.IsPositive() {
		return &ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if !in.Type.Valid() {
		return &ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	if in.Category == "" {
		return &ErrValidation{Field: "category", Message: "required"}
	}
	if !IsValidCategory(ctx, in.Type, in.Category) {
		return &ErrValidation{Field: "category", Message: "not allowed for " + string(ctx) + "/" + string(in.Type)}
	}
	if in.Date.IsZero() {
		return &ErrValidation{Field: "date", Message: "required"}
	}
	return nil
}
