package product

import (
	"context"
	"sort"
	"sync"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "product not found")

type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id string) error
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[string]Product
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	repo := &InMemoryRepository{products: make(map[string]Product, len(seed))}
	for _, p := range seed {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *InMemoryRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if f.match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListByIDs returns the products that exist, in no particular order.
func (r *InMemoryRepository) ListByIDs(ctx context.Context, ids []string) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.products {
		if p.Category == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[p.ID] = p
	return p, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return Product{}, ErrNotFound
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}
