package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/port"
)

// Chaves do armazenamento. O e-mail já chega normalizado.
const (
	currentUserKey = "controletok_user"
	themeKeyPrefix = "controletok_theme_"
	txKeyPrefix    = "controletok_transactions_"
	goalsKeyPrefix = "controletok_goals_"
)

func themeKey(email string) string { return themeKeyPrefix + email }
func transactionsKey(email string) string { return txKeyPrefix + email }
func goalsKey(email string) string { return goalsKeyPrefix + email }

// loadJSON reads key and decodes it into T. found is false when the key
// does not exist; a stored "[]" is found and decodes to an empty value.
func loadJSON[T any](ctx context.Context, store port.KVStore, key string) (value T, found bool, err error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return value, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return value, false, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, true, fmt.Errorf("decode %s: %w", key, err)
	}
	return value, true, nil
}

func saveJSON(ctx context.Context, store port.KVStore, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// normalizeLoaded fills the context of entries written before contexts
// existed, and never returns nil so an empty collection encodes as "[]".
func normalizeLoaded(txs []domain.Transaction) []domain.Transaction {
	if txs == nil {
		return []domain.Transaction{}
	}
	for i := range txs {
		if txs[i].Context == "" {
			txs[i].Context = domain.DefaultContext
		}
	}
	return txs
}
