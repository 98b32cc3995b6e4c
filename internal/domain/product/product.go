// Package product defines the catalog model and its persistence contract.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item available for purchase. Price is in SAR.
type Product struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	Category     string
	Brand        string
	Description  string
	Images       []string
	Stock        int
	Rating       decimal.Decimal
	ReviewsCount int
}

// Repository defines catalog persistence.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	// DecrementStock reduces a product's stock by qty, flooring at zero.
	// Ordering more than is available empties the stock; it never fails
	// the order.
	DecrementStock(ctx context.Context, id string, qty int) error
}
