// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/m3rciful/storebot/internal/domain"
)

// Type names an order lifecycle event.
type Type string

const (
	OrderCreated       Type = "order.created"
	OrderConfirmed     Type = "order.confirmed"
	OrderCancelled     Type = "order.cancelled"
	OrderStatusChanged Type = "order.status_changed"
)

// OrderEvent is the JSON payload published for every order change.
type OrderEvent struct {
	Type           Type                  `json:"type"`
	OrderID        int64                 `json:"order_id"`
	OrderNumber    string                `json:"order_number"`
	CustomerID     int64                 `json:"customer_id"`
	Status         domain.OrderStatus    `json:"status"`
	PreviousStatus domain.OrderStatus    `json:"previous_status,omitempty"`
	DeliveryMethod domain.DeliveryMethod `json:"delivery_method,omitempty"`
	OccurredAt     time.Time             `json:"occurred_at"`
}

// NewOrderEvent snapshots o as an event of type t.
func NewOrderEvent(t Type, o domain.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:           t,
		OrderID:        o.ID,
		OrderNumber:    o.Number,
		CustomerID:     o.CustomerID,
		Status:         o.Status,
		DeliveryMethod: o.DeliveryMethod,
		OccurredAt:     at.UTC(),
	}
}

// Publisher delivers order events.
type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
}

// Nop discards events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	Events []OrderEvent
}

func (r *Recorder) Publish(_ context.Context, e OrderEvent) error {
	r.Events = append(r.Events, e)
	return nil
}

// Types lists the recorded event types in publish order.
func (r *Recorder) Types() []Type {
	out := make([]Type, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
