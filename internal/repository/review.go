package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alhussam/store-api/internal/domain/product"
)

const (
	reviewColumns = `id, product_id, user_id, author, rating, comment, created_at`

	listReviewsSQL = `SELECT ` + reviewColumns + ` FROM reviews
		WHERE product_id = $1 ORDER BY created_at DESC`

	insertReviewSQL = `INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	// Recomputes the product aggregates from the stored reviews. The average
	// is rounded to one decimal, the way the storefront shows it.
	refreshProductRatingSQL = `UPDATE products SET
		rating = COALESCE((SELECT ROUND(AVG(rating), 1) FROM reviews WHERE product_id = $1), 0),
		reviews_count = (SELECT COUNT(*) FROM reviews WHERE product_id = $1)
		WHERE id = $1`
)

var _ product.ReviewRepository = (*ReviewRepository)(nil)

// ReviewRepository implements product.ReviewRepository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]product.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for %q: %w", productID, err)
	}
	defer rows.Close()

	var out []product.Review
	for rows.Next() {
		var rev product.Review
		err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.Author,
			&rev.Rating, &rev.Comment, &rev.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reviews: %w", err)
	}
	return out, nil
}

// Add inserts the review and refreshes the product's rating and review count
// in one transaction.
func (r *ReviewRepository) Add(ctx context.Context, rev product.Review) error {
	if err := rev.Validate(); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning review tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, insertReviewSQL,
		rev.ID, rev.ProductID, rev.UserID, rev.Author, rev.Rating, rev.Comment, rev.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return product.ErrNotFound
		}
		return fmt.Errorf("inserting review for %q: %w", rev.ProductID, err)
	}

	if _, err := tx.Exec(ctx, refreshProductRatingSQL, rev.ProductID); err != nil {
		return fmt.Errorf("refreshing rating for %q: %w", rev.ProductID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing review: %w", err)
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
