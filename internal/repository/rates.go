package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alhussam/store-api/internal/domain/currency"
)

const (
	// Exchange rates live in a single row; the fixed id keeps it that way.
	getRatesSQL = `SELECT usd_divisor, yer_multiplier FROM exchange_rates WHERE id = 1`

	updateRatesSQL = `UPDATE exchange_rates SET usd_divisor = $1, yer_multiplier = $2 WHERE id = 1`
)

var _ currency.Repository = (*RatesRepository)(nil)

// RatesRepository implements currency.Repository backed by PostgreSQL.
// When the row is missing it falls back to the built-in defaults.
type RatesRepository struct {
	pool *pgxpool.Pool
}

// NewRatesRepository returns a RatesRepository that uses the given pool.
func NewRatesRepository(pool *pgxpool.Pool) *RatesRepository {
	return &RatesRepository{pool: pool}
}

func (r *RatesRepository) Get(ctx context.Context) (currency.Rates, error) {
	var rates currency.Rates
	err := r.pool.QueryRow(ctx, getRatesSQL).Scan(&rates.USDDivisor, &rates.YERMultiplier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return currency.DefaultRates(), nil
		}
		return currency.Rates{}, fmt.Errorf("loading exchange rates: %w", err)
	}
	return rates, nil
}

func (r *RatesRepository) Update(ctx context.Context, rates currency.Rates) error {
	if err := rates.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, updateRatesSQL, rates.USDDivisor, rates.YERMultiplier)
	if err != nil {
		return fmt.Errorf("updating exchange rates: %w", err)
	}
	return nil
}
