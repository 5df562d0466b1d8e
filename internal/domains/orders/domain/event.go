package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType names an order lifecycle notification.
type EventType string

const (
	EventOrderPlaced        EventType = "order.placed"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderDeleted       EventType = "order.deleted"
)

// Event is emitted after an order change has been committed.
type Event struct {
	ID             string          `json:"id"`
	Type           EventType       `json:"type"`
	OrderID        int64           `json:"orderId"`
	UserID         int64           `json:"userId"`
	Status         Status          `json:"status,omitempty"`
	PreviousStatus Status          `json:"previousStatus,omitempty"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ItemCount      int             `json:"itemCount,omitempty"`
	OccurredAt     time.Time       `json:"occurredAt"`
}
