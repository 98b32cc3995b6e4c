package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCode is returned when a coupon code is not found or the
	// matching coupon has been deactivated by an administrator.
	ErrInvalidCode = errors.New("invalid coupon code")
	// ErrExpired is returned when a coupon's expiry date has passed.
	ErrExpired = errors.New("coupon expired")
	// ErrNotFound is returned by repository lookups for a missing coupon ID.
	ErrNotFound = errors.New("coupon not found")
	// ErrDuplicateCode is returned when creating a coupon whose code already exists.
	ErrDuplicateCode = errors.New("coupon code already exists")
)

// Coupon is a percentage-discount code managed by administrators.
type Coupon struct {
	ID              string
	Code            string // stored uppercase, matched case-insensitively
	DiscountPercent decimal.Decimal
	ExpiresAt       time.Time
	Active          bool
	// UsageCount tracks how many orders redeemed the coupon. Informational
	// only; it never limits redemption.
	UsageCount int
	CreatedAt  time.Time
}

// Repository provides lookup and administration of coupons.
type Repository interface {
	// FindByCode returns the coupon with the given normalized code,
	// or ErrInvalidCode when no coupon matches.
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id string) error
	// IncrementUsage bumps the usage counter after an order redeems the code.
	IncrementUsage(ctx context.Context, code string) error
}

// Normalize trims surrounding whitespace and uppercases a user-entered code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
