package cart

import (
	"context"
	"encoding/json"
	"sync"
)

// Repository stores each user's raw cart document. Get returns nil when the
// user has no cart.
type Repository interface {
	Get(ctx context.Context, userID string) (json.RawMessage, error)
	Put(ctx context.Context, userID string, raw json.RawMessage) error
	Clear(ctx context.Context, userID string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]json.RawMessage
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[string]json.RawMessage)}
}

func (r *InMemoryRepository) Get(ctx context.Context, userID string) (json.RawMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), raw...), nil
}

func (r *InMemoryRepository) Put(ctx context.Context, userID string, raw json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[userID] = append(json.RawMessage(nil), raw...)
	return nil
}

func (r *InMemoryRepository) Clear(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}
