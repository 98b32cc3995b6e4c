// Package favorites tracks the products a user has marked as favorites.
package favorites

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFavorite is returned when removing a product that was never favorited.
var ErrNotFavorite = errors.New("product is not a favorite")

// Repository persists per-user favorite product IDs. Adding an existing
// favorite is a no-op; the set semantics live in the store.
type Repository interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}
