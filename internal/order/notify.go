package order

import (
	"context"
	"time"
)

type EventType string

const (
	EventCreated        EventType = "created"
	EventStatusChanged  EventType = "status_changed"
	EventPaymentChanged EventType = "payment_changed"
	EventDeleted        EventType = "deleted"
)

// Event describes a change to an order.
type Event struct {
	Type    EventType
	Order   Order
	ActorID string
	At      time.Time
}

// Notifier forwards order events outside the process, for example to a
// message broker.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// publish pushes o to live subscribers and then to the notifier. A deleted
// order ends the streams watching it. Notifier failures are logged; the
// write they follow has already happened.
func (s *Service) publish(ctx context.Context, typ EventType, o Order, actorID string) {
	if typ == EventDeleted {
		s.hub.Evict(o.ID)
	} else {
		s.hub.Publish(o)
	}
	if s.notifier == nil {
		return
	}
	e := Event{Type: typ, Order: o, ActorID: actorID, At: s.now().UTC()}
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.log.WithError(err).WithField("orderId", o.ID).WithField("event", typ).Warn("order event not delivered")
	}
}
