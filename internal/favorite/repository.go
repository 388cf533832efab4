package favorite

import (
	"context"
	"sync"
	"time"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

var (
	ErrAlreadyFavorite = apperr.New(apperr.KindConflict, "product already in favorites")
	ErrNotFavorite     = apperr.New(apperr.KindNotFound, "product not in favorites")
)

// Repository stores (userId, productId) pairs.
type Repository interface {
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	// ProductIDs returns the wishlist in the order items were added.
	ProductIDs(ctx context.Context, userID string) ([]string, error)
}

type entry struct {
	productID string
	addedAt   time.Time
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	lists map[string][]entry
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{lists: make(map[string][]entry)}
}

func (r *InMemoryRepository) Add(ctx context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.lists[userID] {
		if e.productID == productID {
			return ErrAlreadyFavorite
		}
	}
	r.lists[userID] = append(r.lists[userID], entry{productID: productID, addedAt: time.Now()})
	return nil
}

func (r *InMemoryRepository) Remove(ctx context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.lists[userID]
	for i, e := range list {
		if e.productID == productID {
			r.lists[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFavorite
}

func (r *InMemoryRepository) ProductIDs(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.lists[userID]))
	for _, e := range r.lists[userID] {
		ids = append(ids, e.productID)
	}
	return ids, nil
}
