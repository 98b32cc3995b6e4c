// Package cart holds per-user cart lines. Unit prices are captured when the
// line is added and deliberately never re-read from the catalog, so a
// mid-session price change cannot affect a cart already built against the
// old price.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrLineNotFound is returned when updating or removing a line that is
	// not in the cart.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Line is one product in a user's cart.
type Line struct {
	ProductID string
	// UnitPrice is the SAR catalog price at the moment the line was added.
	UnitPrice decimal.Decimal
	Quantity  int
}

// Repository defines cart persistence. Adding a product already in the cart
// increases its quantity rather than creating a second line.
type Repository interface {
	Get(ctx context.Context, userID string) ([]Line, error)
	AddLine(ctx context.Context, userID string, line Line) error
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveLine(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}
