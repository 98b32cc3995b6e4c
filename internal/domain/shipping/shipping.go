// Package shipping defines the store's flat-fee shipping options.
package shipping

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested shipping option does not exist.
var ErrNotFound = errors.New("shipping option not found")

// Option is a selectable shipping method with a flat fee in SAR.
type Option struct {
	ID            string
	Name          string
	FlatFee       decimal.Decimal
	Description   string
	EstimatedDays string
}

// Repository provides read access to the configured shipping options.
// Options are static configuration; ordering follows the seed order, with
// the first option acting as the default at checkout.
type Repository interface {
	List(ctx context.Context) ([]Option, error)
	GetByID(ctx context.Context, id string) (*Option, error)
}
