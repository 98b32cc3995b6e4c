// Package order defines placed orders and their status lifecycle.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/alhussam/store-api/internal/domain/currency"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrUnknownStatus is returned when setting a status outside the known set.
	ErrUnknownStatus = errors.New("unknown order status")
)

// Status is an order's position in the fulfilment lifecycle.
type Status string

// The lifecycle runs pending → processing → shipped → delivered, with
// cancelled reachable at any point. Administrators may set any known status
// from any other; the linear order is a convention, not an enforced machine,
// so a mis-set status can always be corrected.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every known status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s conventionally ends the lifecycle. Terminal
// is informational: transitions out of a terminal status are still allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Item is a snapshot of one cart line at the moment the order was placed.
// The quantity also records how much stock was decremented, so a future
// restock-on-cancel has the data it needs.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Order is a placed order. Everything except Status is immutable after
// creation; Status changes only through administrator actions.
type Order struct {
	ID              string
	BuyerID         string
	Items           []Item
	Subtotal        decimal.Decimal
	ShippingFee     decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	CouponCode      string
	DisplayCurrency currency.Currency
	Status          Status
	ShippingAddress string
	PaymentMethod   string
	CreatedAt       time.Time
}

// Repository defines order persistence.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}
