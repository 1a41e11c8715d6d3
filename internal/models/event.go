package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys for order events.
const (
	OrderEventCreated       = "order.created"
	OrderEventStatusUpdated = "order.status_updated"
	OrderEventCancelled     = "order.cancelled"
)

// OrderEvent is the message body published after an order changes.
type OrderEvent struct {
	Type        string          `json:"type"`
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// NewOrderEvent builds an event of the given type from the order's current state.
func NewOrderEvent(eventType string, order *Order) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}
