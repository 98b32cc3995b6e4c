package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrInvalidRating is returned when a review rating falls outside 1..5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Review is one buyer's rating and comment on a product.
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Author    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Validate checks the rating range.
func (r Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// ReviewRepository persists reviews. Add keeps the product's Rating average
// (one decimal) and ReviewsCount in step with the stored reviews.
type ReviewRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	Add(ctx context.Context, rev Review) error
}
