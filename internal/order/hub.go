package order

import (
	"sync"
)

// subscriberBuffer is how many undelivered updates a subscriber may hold
// before the oldest is dropped.
const subscriberBuffer = 16

// Filter selects the orders a subscriber wants. Empty fields match
// anything; set fields must all match.
type Filter struct {
	OrderID  string
	UserID   string
	SellerID string
}

func (f Filter) matches(o Order) bool {
	if f.OrderID != "" && o.ID != f.OrderID {
		return false
	}
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.SellerID != "" && !o.HasSeller(f.SellerID) {
		return false
	}
	return true
}

type subscriber struct {
	filter Filter
	ch     chan Order
	once   sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub fans order updates out to live subscribers. Publish never blocks:
// a subscriber that falls behind loses its oldest pending update.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe returns a channel of updates matching f and a cancel func.
// cancel closes the channel and may be called more than once.
func (h *Hub) Subscribe(f Filter) (<-chan Order, func()) {
	sub := &subscriber{filter: f, ch: make(chan Order, subscriberBuffer)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

// Publish delivers o to every matching subscriber.
func (h *Hub) Publish(o Order) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !sub.filter.matches(o) {
			continue
		}
		deliver(sub.ch, o.clone())
	}
}

func deliver(ch chan Order, o Order) {
	for {
		select {
		case ch <- o:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Evict closes every subscription watching orderID, after the order is
// gone. Pending updates stay readable before the close.
func (h *Hub) Evict(orderID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if sub.filter.OrderID != orderID {
			continue
		}
		delete(h.subs, sub)
		sub.close()
	}
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
