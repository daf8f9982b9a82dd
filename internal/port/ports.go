// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/controletok-go/internal/domain"
)

// KVStore is the storage adapter: a flat key-value space, one writer at a time.
// Get reports ok=false for a missing key. Removing a missing key is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Authenticator turns login credentials into a user identity.
type Authenticator interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (*domain.User, error)
}

// TextGenerator calls the external text-generation service.
type TextGenerator interface {
	Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResponse, error)
}

// ChangeNotifier receives an event after each persisted mutation.
type ChangeNotifier interface {
	Notify(ctx context.Context, event domain.ChangeEvent) error
}

// Confirmer asks the acting user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
