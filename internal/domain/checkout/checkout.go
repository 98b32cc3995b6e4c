// Package checkout sequences order placement: address and payment validation,
// coupon redemption, pricing, and the atomic commit that creates the order,
// clears the cart, and decrements stock.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alhussam/store-api/internal/domain/cart"
	"github.com/alhussam/store-api/internal/domain/coupon"
	"github.com/alhussam/store-api/internal/domain/currency"
	"github.com/alhussam/store-api/internal/domain/order"
	"github.com/alhussam/store-api/internal/domain/pricing"
	"github.com/alhussam/store-api/internal/domain/product"
	"github.com/alhussam/store-api/internal/domain/shipping"
	"github.com/alhussam/store-api/internal/events"
)

var (
	// ErrNotAuthenticated is returned when no buyer identity is present.
	ErrNotAuthenticated = errors.New("checkout requires a logged-in buyer")
	// ErrEmptyCart is returned when the buyer's cart has no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoShippingOptions is returned when the store has no shipping
	// options configured at all.
	ErrNoShippingOptions = errors.New("no shipping options configured")
)

// ValidationError reports the checkout form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid checkout fields: " + joinFields(e.Fields)
}

func joinFields(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}

// Address is the delivery address collected in the first checkout phase.
type Address struct {
	RecipientName string `validate:"required"`
	Phone         string `validate:"required"`
	City          string `validate:"required"`
	Street        string `validate:"required"`
}

// Payment is the method collected in the second phase. Card fields are only
// required for card payments and are not verified beyond presence; payment
// is simulated.
type Payment struct {
	Method     string `validate:"required,oneof=card cod"`
	CardNumber string `validate:"required_if=Method card"`
	CardExpiry string `validate:"required_if=Method card"`
	CardCVV    string `validate:"required_if=Method card"`
}

// Request is a complete checkout submission.
type Request struct {
	BuyerID          string
	Address          Address
	Payment          Payment
	ShippingOptionID string
	CouponCode       string
	DisplayCurrency  currency.Currency
}

// Store commits the result of a checkout in one transaction: insert the
// order, clear the buyer's cart, decrement stock per item (floored at zero),
// and bump the coupon usage counter when a coupon was redeemed.
type Store interface {
	CommitOrder(ctx context.Context, o *order.Order) error
}

// Service orchestrates checkout.
type Service struct {
	products  product.Repository
	carts     cart.Repository
	shippings shipping.Repository
	coupons   coupon.Evaluator
	store     Store
	publisher events.Publisher
	validate  *validator.Validate
	lg        *zap.Logger
	now       func() time.Time
}

// NewService creates a checkout Service.
func NewService(
	products product.Repository,
	carts cart.Repository,
	shippings shipping.Repository,
	coupons coupon.Evaluator,
	store Store,
	publisher events.Publisher,
	lg *zap.Logger,
) *Service {
	return &Service{
		products:  products,
		carts:     carts,
		shippings: shippings,
		coupons:   coupons,
		store:     store,
		publisher: publisher,
		validate:  validator.New(),
		lg:        lg,
		now:       time.Now,
	}
}

// PlaceOrder runs the full checkout sequence and returns the created order.
//
// Coupon failures abort the submission so the buyer can correct or drop the
// code. Stock is decremented with a floor at zero: ordering more than is
// available empties the shelf but never fails the order.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (*order.Order, error) {
	if req.BuyerID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := s.validateForm(req); err != nil {
		return nil, err
	}

	displayCurrency := req.DisplayCurrency
	if displayCurrency == "" {
		displayCurrency = currency.SAR
	}
	if !displayCurrency.IsValid() {
		return nil, currency.ErrUnknownCurrency
	}

	lines, err := s.carts.Get(ctx, req.BuyerID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	opt, err := s.resolveShipping(ctx, req.ShippingOptionID)
	if err != nil {
		return nil, err
	}

	var applied *coupon.Coupon
	if req.CouponCode != "" {
		applied, err = s.coupons.Redeem(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
	}

	items := make([]order.Item, len(lines))
	priceLines := make([]pricing.Line, len(lines))
	for i, l := range lines {
		items[i] = order.Item{
			ProductID: l.ProductID,
			Name:      s.productName(ctx, l.ProductID),
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		}
		priceLines[i] = pricing.Line{
			ProductID: l.ProductID,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		}
	}

	breakdown := pricing.Compute(priceLines, opt.FlatFee, applied)

	o := &order.Order{
		ID:              uuid.New().String(),
		BuyerID:         req.BuyerID,
		Items:           items,
		Subtotal:        breakdown.Subtotal,
		ShippingFee:     breakdown.ShippingFee,
		Discount:        breakdown.DiscountAmount,
		Total:           breakdown.Total,
		DisplayCurrency: displayCurrency,
		Status:          order.StatusPending,
		ShippingAddress: formatAddress(req.Address),
		PaymentMethod:   describePayment(req.Payment),
		CreatedAt:       s.now(),
	}
	if applied != nil {
		o.CouponCode = applied.Code
	}

	if err := s.store.CommitOrder(ctx, o); err != nil {
		return nil, errors.Wrap(err, "commit order")
	}

	if err := s.publisher.Publish(ctx, events.TopicOrderCreated, events.OrderCreated{
		OrderID:   o.ID,
		BuyerID:   o.BuyerID,
		Total:     o.Total.String(),
		Currency:  string(o.DisplayCurrency),
		CreatedAt: o.CreatedAt,
	}); err != nil {
		s.lg.Warn("publish order created", zap.String("order_id", o.ID), zap.Error(err))
	}

	return o, nil
}

func (s *Service) validateForm(req Request) error {
	fields := make([]string, 0, 4)
	if err := s.validate.Struct(req.Address); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, "address."+fe.Field())
			}
		} else {
			return errors.Wrap(err, "validate address")
		}
	}
	if err := s.validate.Struct(req.Payment); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, "payment."+fe.Field())
			}
		} else {
			return errors.Wrap(err, "validate payment")
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// resolveShipping looks up the selected option, falling back to the first
// configured option when none is selected or the id is unknown.
func (s *Service) resolveShipping(ctx context.Context, id string) (*shipping.Option, error) {
	if id != "" {
		opt, err := s.shippings.GetByID(ctx, id)
		if err == nil {
			return opt, nil
		}
		if !errors.Is(err, shipping.ErrNotFound) {
			return nil, errors.Wrap(err, "get shipping option")
		}
	}

	opts, err := s.shippings.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list shipping options")
	}
	if len(opts) == 0 {
		return nil, ErrNoShippingOptions
	}
	return &opts[0], nil
}

// productName resolves the catalog name for the order snapshot. A product
// deleted after it was carted keeps its snapshot price; the id stands in
// for the name.
func (s *Service) productName(ctx context.Context, id string) string {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return id
	}
	return p.Name
}

func formatAddress(a Address) string {
	return a.Street + ", " + a.City + " (" + a.RecipientName + ", " + a.Phone + ")"
}

func describePayment(p Payment) string {
	if p.Method == "card" {
		last4 := p.CardNumber
		if len(last4) > 4 {
			last4 = last4[len(last4)-4:]
		}
		return "card ending " + last4
	}
	return "cash on delivery"
}
