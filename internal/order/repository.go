package order

import (
	"context"
	"sync"
	"time"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

var ErrOrderNotFound = apperr.New(apperr.KindNotFound, "order not found")

// Repository persists orders. AppendStatus and SetPaymentStatus each change
// an order in a single write.
type Repository interface {
	Create(ctx context.Context, o Order) (Order, error)
	GetByID(ctx context.Context, id string) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	AppendStatus(ctx context.Context, id string, entry HistoryEntry) (Order, error)
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus, at time.Time) (Order, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository for tests and STORAGE=memory.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewInMemoryRepository(seed ...Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make(map[string]Order, len(seed))}
	for _, o := range seed {
		r.orders[o.ID] = o.clone()
	}
	return r
}

func (r *InMemoryRepository) Create(ctx context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[o.ID] = o.clone()
	return o.clone(), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o.clone(), nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.UserID == userID }), nil
}

func (r *InMemoryRepository) ListBySeller(ctx context.Context, sellerID string) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.HasSeller(sellerID) }), nil
}

func (r *InMemoryRepository) ListAll(ctx context.Context) ([]Order, error) {
	return r.filter(func(Order) bool { return true }), nil
}

func (r *InMemoryRepository) filter(keep func(Order) bool) []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o.clone())
		}
	}
	return out
}

func (r *InMemoryRepository) AppendStatus(ctx context.Context, id string, entry HistoryEntry) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	o = o.clone()
	o.Status = entry.Status
	o.StatusHistory = append(o.StatusHistory, entry)
	o.UpdatedAt = entry.Timestamp
	r.orders[id] = o
	return o.clone(), nil
}

func (r *InMemoryRepository) SetPaymentStatus(ctx context.Context, id string, status PaymentStatus, at time.Time) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	o.Payment.PaymentStatus = status
	o.UpdatedAt = at
	r.orders[id] = o
	return o.clone(), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}
