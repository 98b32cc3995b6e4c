// Package events publishes order lifecycle notifications for downstream
// consumers (fulfilment dashboards, notification services).
package events

import (
	"context"
	"time"
)

// Topics for order lifecycle events.
const (
	TopicOrderCreated       = "orders.created"
	TopicOrderStatusChanged = "orders.status_changed"
)

// OrderCreated is emitted once per successfully placed order.
type OrderCreated struct {
	OrderID   string    `json:"order_id"`
	BuyerID   string    `json:"buyer_id"`
	Total     string    `json:"total"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderStatusChanged is emitted when an administrator changes an order status.
type OrderStatusChanged struct {
	OrderID   string    `json:"order_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

// Publisher delivers events to a topic. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Noop is a Publisher that discards everything. Used when no broker is
// configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }
