package service

import "github.com/boddenberg/controletok-go/internal/domain"

// AllTransactions returns the in-memory collection in stored order, both contexts.
func (c *Controller) AllTransactions() ([]domain.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil, domain.ErrNotLoggedIn
	}
	return append([]domain.Transaction(nil), c.transactions...), nil
}
