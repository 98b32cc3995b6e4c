package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alhussam/store-api/internal/domain/shipping"
)

const (
	shippingColumns = `id, name, flat_fee, description, estimated_days`

	listShippingOptionsSQL = `SELECT ` + shippingColumns + ` FROM shipping_options ORDER BY sort_order`

	getShippingOptionSQL = `SELECT ` + shippingColumns + ` FROM shipping_options WHERE id = $1`
)

var _ shipping.Repository = (*ShippingRepository)(nil)

// ShippingRepository implements shipping.Repository backed by PostgreSQL.
type ShippingRepository struct {
	pool *pgxpool.Pool
}

// NewShippingRepository returns a ShippingRepository that uses the given pool.
func NewShippingRepository(pool *pgxpool.Pool) *ShippingRepository {
	return &ShippingRepository{pool: pool}
}

func (r *ShippingRepository) List(ctx context.Context) ([]shipping.Option, error) {
	rows, err := r.pool.Query(ctx, listShippingOptionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing shipping options: %w", err)
	}
	defer rows.Close()

	var out []shipping.Option
	for rows.Next() {
		var o shipping.Option
		if err := rows.Scan(&o.ID, &o.Name, &o.FlatFee, &o.Description, &o.EstimatedDays); err != nil {
			return nil, fmt.Errorf("scanning shipping option: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shipping options: %w", err)
	}
	return out, nil
}

func (r *ShippingRepository) GetByID(ctx context.Context, id string) (*shipping.Option, error) {
	var o shipping.Option
	err := r.pool.QueryRow(ctx, getShippingOptionSQL, id).
		Scan(&o.ID, &o.Name, &o.FlatFee, &o.Description, &o.EstimatedDays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipping.ErrNotFound
		}
		return nil, fmt.Errorf("getting shipping option %q: %w", id, err)
	}
	return &o, nil
}
