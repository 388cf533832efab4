package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/wichananm65/marketplace-backend/internal/order"
)

// Sender is the part of Client the publisher needs.
type Sender interface {
	Publish(routingKey string, msg amqp.Publishing) error
}

// OrderMessage is the JSON body of every order event.
type OrderMessage struct {
	ID            string              `json:"id"`
	Type          order.EventType     `json:"type"`
	OrderID       string              `json:"orderId"`
	Status        order.Status        `json:"status"`
	PaymentStatus order.PaymentStatus `json:"paymentStatus"`
	ActorID       string              `json:"actorId"`
	Timestamp     time.Time           `json:"timestamp"`
	Order         order.Order         `json:"order"`
}

// OrderPublisher sends order events to the exchange under order.<event>.
type OrderPublisher struct {
	sender Sender
	log    logrus.FieldLogger
}

func NewOrderPublisher(sender Sender, log logrus.FieldLogger) *OrderPublisher {
	return &OrderPublisher{sender: sender, log: log}
}

func RoutingKey(t order.EventType) string {
	return "order." + string(t)
}

// Notify implements order.Notifier.
func (p *OrderPublisher) Notify(ctx context.Context, e order.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ts := e.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	msg := OrderMessage{
		ID:            uuid.NewString(),
		Type:          e.Type,
		OrderID:       e.Order.ID,
		Status:        e.Order.Status,
		PaymentStatus: e.Order.Payment.PaymentStatus,
		ActorID:       e.ActorID,
		Timestamp:     ts,
		Order:         e.Order,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	key := RoutingKey(e.Type)
	err = p.sender.Publish(key, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    ts,
		Headers: amqp.Table{
			"order_id":   e.Order.ID,
			"event_type": string(e.Type),
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	p.log.WithFields(logrus.Fields{"routingKey": key, "orderId": e.Order.ID}).Debug("order event published")
	return nil
}
