package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alhussam/store-api/internal/domain/checkout"
	"github.com/alhussam/store-api/internal/domain/order"
)

var _ checkout.Store = (*CheckoutStore)(nil)

// CheckoutStore commits a checkout in a single transaction so a failure in
// any step leaves no partial order, no half-cleared cart, and untouched stock.
type CheckoutStore struct {
	pool *pgxpool.Pool
}

// NewCheckoutStore returns a CheckoutStore that uses the given pool.
func NewCheckoutStore(pool *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{pool: pool}
}

// CommitOrder inserts the order, clears the buyer's cart, decrements stock
// per line item (floored at zero), and bumps the coupon usage counter, all
// in one transaction.
func (s *CheckoutStore) CommitOrder(ctx context.Context, o *order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning checkout tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.BuyerID, items, o.Subtotal, o.ShippingFee, o.Discount, o.Total,
		o.CouponCode, o.DisplayCurrency, o.Status, o.ShippingAddress, o.PaymentMethod, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	if _, err := tx.Exec(ctx, clearCartSQL, o.BuyerID); err != nil {
		return fmt.Errorf("clearing cart for %q: %w", o.BuyerID, err)
	}

	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, decrementStockSQL, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("decrementing stock for %q: %w", item.ProductID, err)
		}
	}

	if o.CouponCode != "" {
		if _, err := tx.Exec(ctx, incrementCouponUsageSQL, o.CouponCode); err != nil {
			return fmt.Errorf("incrementing coupon usage for %q: %w", o.CouponCode, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout: %w", err)
	}
	return nil
}
