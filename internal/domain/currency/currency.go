// Package currency converts base-currency (SAR) amounts into the store's
// supported display currencies.
package currency

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Currency identifies a display currency supported by the store.
type Currency string

const (
	// SAR is the store's home currency. All prices are stored in SAR.
	SAR Currency = "SAR"
	// USD amounts are derived by dividing the SAR amount by the USD divisor.
	USD Currency = "USD"
	// YER amounts are derived by multiplying the SAR amount by the YER
	// multiplier and rounding to a whole number.
	YER Currency = "YER"
)

var (
	// ErrInvalidRate is returned when an exchange rate coefficient is zero
	// or negative.
	ErrInvalidRate = errors.New("exchange rate must be positive")
	// ErrUnknownCurrency is returned for a currency the store does not support.
	ErrUnknownCurrency = errors.New("unknown currency")
)

// Rates holds the two exchange rate coefficients relative to SAR.
type Rates struct {
	// USDDivisor converts SAR to USD: usd = sar / USDDivisor.
	USDDivisor decimal.Decimal
	// YERMultiplier converts SAR to YER: yer = round(sar * YERMultiplier).
	YERMultiplier decimal.Decimal
}

// DefaultRates returns the store's built-in rates, used until an administrator
// configures different ones.
func DefaultRates() Rates {
	return Rates{
		USDDivisor:    decimal.RequireFromString("3.75"),
		YERMultiplier: decimal.NewFromInt(145),
	}
}

// Validate checks that both coefficients are positive.
func (r Rates) Validate() error {
	if !r.USDDivisor.IsPositive() || !r.YERMultiplier.IsPositive() {
		return ErrInvalidRate
	}
	return nil
}

// IsValid reports whether c is one of the supported currencies.
func (c Currency) IsValid() bool {
	switch c {
	case SAR, USD, YER:
		return true
	}
	return false
}

// Convert maps a SAR amount to the target display currency.
//
// SAR is the identity. USD amounts are rounded to 2 decimal places, YER
// amounts to a whole number. A non-positive coefficient yields ErrInvalidRate.
func Convert(amount decimal.Decimal, target Currency, rates Rates) (decimal.Decimal, error) {
	switch target {
	case SAR:
		return amount, nil
	case USD:
		if !rates.USDDivisor.IsPositive() {
			return decimal.Zero, ErrInvalidRate
		}
		return amount.DivRound(rates.USDDivisor, 2), nil
	case YER:
		if !rates.YERMultiplier.IsPositive() {
			return decimal.Zero, ErrInvalidRate
		}
		return amount.Mul(rates.YERMultiplier).Round(0), nil
	default:
		return decimal.Zero, ErrUnknownCurrency
	}
}

// Display converts amount like Convert but falls back to the unconverted SAR
// amount when the configured rate is unusable. Handlers use it so a corrupt
// rate row degrades to 1:1 display instead of failing the request.
func Display(amount decimal.Decimal, target Currency, rates Rates) decimal.Decimal {
	converted, err := Convert(amount, target, rates)
	if err != nil {
		return amount
	}
	return converted
}

// Repository provides access to the administrator-editable exchange rates.
type Repository interface {
	Get(ctx context.Context) (Rates, error)
	Update(ctx context.Context, rates Rates) error
}
