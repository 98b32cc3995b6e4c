// Package pricing computes checkout totals from cart lines, a shipping fee,
// and an optional coupon. All amounts are in the store's base currency (SAR);
// nothing here rounds — display rounding happens at the currency boundary.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/alhussam/store-api/internal/domain/coupon"
)

var hundred = decimal.NewFromInt(100)

// Line is one product/quantity pair priced at its cart-snapshot unit price.
type Line struct {
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Breakdown is the result of a pricing computation.
type Breakdown struct {
	Subtotal       decimal.Decimal
	ShippingFee    decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// Compute builds the payable total.
//
// The coupon percentage applies to subtotal plus shipping, matching the
// storefront's behaviour of discounting the shipping-inclusive amount. The
// total is floored at zero. An empty line slice prices to just the shipping
// fee; gating on empty carts is the checkout service's job.
func Compute(lines []Line, shippingFee decimal.Decimal, applied *coupon.Coupon) Breakdown {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	discount := decimal.Zero
	if applied != nil {
		discount = subtotal.Add(shippingFee).Mul(applied.DiscountPercent).Div(hundred)
	}

	total := subtotal.Add(shippingFee).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Breakdown{
		Subtotal:       subtotal,
		ShippingFee:    shippingFee,
		DiscountAmount: discount,
		Total:          total,
	}
}
