package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alhussam/store-api/internal/domain/favorites"
)

const (
	listFavoritesSQL = `SELECT product_id FROM favorites WHERE user_id = $1 ORDER BY added_at DESC`

	addFavoriteSQL = `INSERT INTO favorites (user_id, product_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`

	removeFavoriteSQL = `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`
)

var _ favorites.Repository = (*FavoritesRepository)(nil)

// FavoritesRepository implements favorites.Repository backed by PostgreSQL.
type FavoritesRepository struct {
	pool *pgxpool.Pool
}

// NewFavoritesRepository returns a FavoritesRepository that uses the given pool.
func NewFavoritesRepository(pool *pgxpool.Pool) *FavoritesRepository {
	return &FavoritesRepository{pool: pool}
}

func (r *FavoritesRepository) List(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, listFavoritesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites for %q: %w", userID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}
	return ids, nil
}

func (r *FavoritesRepository) Add(ctx context.Context, userID, productID string) error {
	if _, err := r.pool.Exec(ctx, addFavoriteSQL, userID, productID); err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	return nil
}

func (r *FavoritesRepository) Remove(ctx context.Context, userID, productID string) error {
	tag, err := r.pool.Exec(ctx, removeFavoriteSQL, userID, productID)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return favorites.ErrNotFavorite
	}
	return nil
}
