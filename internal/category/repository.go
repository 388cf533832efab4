package category

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

var (
	ErrNotFound  = apperr.New(apperr.KindNotFound, "category not found")
	ErrNameTaken = apperr.New(apperr.KindConflict, "a category with this name already exists")
	ErrInUse     = apperr.New(apperr.KindConflict, "category is still used by products")
)

// Repository provides access to category rows.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (Category, error)
	GetByName(ctx context.Context, name string) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, c Category) (Category, error)
	Delete(ctx context.Context, id string) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Category
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	repo := &InMemoryRepository{items: make(map[string]Category, len(seed))}
	for _, c := range seed {
		repo.items[c.ID] = c
	}
	return repo
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (r *InMemoryRepository) GetByName(ctx context.Context, name string) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.items {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Create(ctx context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[c.ID] = c
	return c, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[c.ID]; !ok {
		return Category{}, ErrNotFound
	}
	r.items[c.ID] = c
	return c, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}
