package domain

import "time"

// ChangeType names a persisted mutation of the session's collections.
type ChangeType string

const (
	ChangeTransactionAdded   ChangeType = "transaction.added"
	ChangeTransactionDeleted ChangeType = "transaction.deleted"
	ChangeGoalAdded          ChangeType = "goal.added"
	ChangeGoalDeposit        ChangeType = "goal.deposit"
	ChangeGoalDeleted        ChangeType = "goal.deleted"
	ChangeProfileUpdated     ChangeType = "profile.updated"
	ChangeThemeUpdated       ChangeType = "theme.updated"
)

// ChangeEvent is emitted after a mutation has been persisted.
type ChangeEvent struct {
	Type     ChangeType `json:"type"`
	Email    string     `json:"email"`
	EntityID string     `json:"entity_id,omitempty"`
	Context  Context    `json:"context,omitempty"`
	At       time.Time  `json:"at"`
}
