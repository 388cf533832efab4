package address

import (
	"context"
	"sort"
	"sync"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "address not found")

// Repository stores saved addresses. Lookups are always scoped by user so
// one user can never read or change another's address.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	Get(ctx context.Context, userID, id string) (Address, error)
	Create(ctx context.Context, a Address) (Address, error)
	Update(ctx context.Context, a Address) (Address, error)
	Delete(ctx context.Context, userID, id string) error
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]Address
}

func NewInMemoryRepository(seed ...Address) *InMemoryRepository {
	r := &InMemoryRepository{data: make(map[string]Address, len(seed))}
	for _, a := range seed {
		r.data[a.ID] = a
	}
	return r
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Address, 0)
	for _, a := range r.data {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, userID, id string) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.data[id]
	if !ok || a.UserID != userID {
		return Address{}, ErrNotFound
	}
	return a, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[a.ID] = a
	return a, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.data[a.ID]
	if !ok || cur.UserID != a.UserID {
		return Address{}, ErrNotFound
	}
	a.CreatedAt = cur.CreatedAt
	r.data[a.ID] = a
	return a, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.data[id]
	if !ok || cur.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}
