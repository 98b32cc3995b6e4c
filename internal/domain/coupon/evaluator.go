// Package coupon implements percentage-discount codes: administrator CRUD
// and checkout-time redemption checks.
package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Evaluator checks whether a user-entered code can be redeemed right now.
type Evaluator interface {
	Redeem(ctx context.Context, code string) (*Coupon, error)
}

// RepoEvaluator implements Evaluator against a Repository.
type RepoEvaluator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoEvaluator creates a RepoEvaluator backed by the given Repository.
func NewRepoEvaluator(repo Repository) *RepoEvaluator {
	return &RepoEvaluator{repo: repo, now: time.Now}
}

// Redeem normalizes the code, looks up the coupon, and checks expiry and
// active state. A past expiry date wins over the active flag: an expired
// coupon reports ErrExpired whether or not it is still marked active.
// Redeem does not touch the usage counter; that happens only when an order
// is actually placed with the coupon.
func (e *RepoEvaluator) Redeem(ctx context.Context, code string) (*Coupon, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return nil, ErrInvalidCode
	}

	c, err := e.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	if !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(e.now()) {
		return nil, ErrExpired
	}
	if !c.Active {
		return nil, ErrInvalidCode
	}

	return c, nil
}
