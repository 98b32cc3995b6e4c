package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alhussam/store-api/internal/domain/cart"
)

const (
	getCartSQL = `SELECT product_id, unit_price, quantity
		FROM cart_lines WHERE user_id = $1 ORDER BY added_at`

	// Re-adding a carted product bumps the quantity and keeps the price
	// captured when the line was first added.
	addCartLineSQL = `INSERT INTO cart_lines (user_id, product_id, unit_price, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity`

	updateCartQuantitySQL = `UPDATE cart_lines SET quantity = $3
		WHERE user_id = $1 AND product_id = $2`

	removeCartLineSQL = `DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2`

	clearCartSQL = `DELETE FROM cart_lines WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) Get(ctx context.Context, userID string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, getCartSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("loading cart for %q: %w", userID, err)
	}
	defer rows.Close()

	var lines []cart.Line
	for rows.Next() {
		var l cart.Line
		if err := rows.Scan(&l.ProductID, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scanning cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cart lines: %w", err)
	}
	return lines, nil
}

func (r *CartRepository) AddLine(ctx context.Context, userID string, line cart.Line) error {
	if line.Quantity < 1 {
		return cart.ErrInvalidQuantity
	}
	_, err := r.pool.Exec(ctx, addCartLineSQL, userID, line.ProductID, line.UnitPrice, line.Quantity)
	if err != nil {
		return fmt.Errorf("adding cart line: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 1 {
		return cart.ErrInvalidQuantity
	}
	tag, err := r.pool.Exec(ctx, updateCartQuantitySQL, userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("updating cart quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

func (r *CartRepository) RemoveLine(ctx context.Context, userID, productID string) error {
	tag, err := r.pool.Exec(ctx, removeCartLineSQL, userID, productID)
	if err != nil {
		return fmt.Errorf("removing cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, clearCartSQL, userID)
	if err != nil {
		return fmt.Errorf("clearing cart for %q: %w", userID, err)
	}
	return nil
}
