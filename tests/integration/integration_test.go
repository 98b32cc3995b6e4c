//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/alhussam/store-api/internal/domain/cart"
	"github.com/alhussam/store-api/internal/domain/coupon"
	"github.com/alhussam/store-api/internal/domain/currency"
	"github.com/alhussam/store-api/internal/domain/order"
	"github.com/alhussam/store-api/internal/domain/product"
	"github.com/alhussam/store-api/internal/repository"
)

type repos struct {
	Products *repository.ProductRepository
	Reviews  *repository.ReviewRepository
	Carts    *repository.CartRepository
	Coupons  *repository.CouponRepository
	Orders   *repository.OrderRepository
	Rates    *repository.RatesRepository
	Checkout *repository.CheckoutStore
}

// startPostgres runs a disposable PostgreSQL container with the schema applied.
func startPostgres(t *testing.T) *repos {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("store"),
		tcpostgres.WithUsername("store"),
		tcpostgres.WithPassword("store"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := repository.NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, repository.RunMigrations(ctx, pool))

	return &repos{
		Products: repository.NewProductRepository(pool),
		Reviews:  repository.NewReviewRepository(pool),
		Carts:    repository.NewCartRepository(pool),
		Coupons:  repository.NewCouponRepository(pool),
		Orders:   repository.NewOrderRepository(pool),
		Rates:    repository.NewRatesRepository(pool),
		Checkout: repository.NewCheckoutStore(pool),
	}
}

func seedProduct(t *testing.T, r *repos, id string, price int64, stock int) {
	t.Helper()
	require.NoError(t, r.Products.Create(context.Background(), &product.Product{
		ID:    id,
		Name:  "منتج " + id,
		Price: decimal.NewFromInt(price),
		Stock: stock,
	}))
}

func TestProductRoundTrip(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	seedProduct(t, db, "p1", 350, 15)

	got, err := db.Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "منتج p1", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(350)))

	_, err = db.Products.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestDecrementStockFloorsAtZero(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	seedProduct(t, db, "p1", 100, 3)
	require.NoError(t, db.Products.DecrementStock(ctx, "p1", 5))

	got, err := db.Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestCartAddMergesLinesAndKeepsFirstPrice(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	seedProduct(t, db, "p1", 100, 10)

	line := cart.Line{ProductID: "p1", UnitPrice: decimal.NewFromInt(100), Quantity: 2}
	require.NoError(t, db.Carts.AddLine(ctx, "u1", line))

	// Second add with a different snapshot price bumps quantity only.
	line.UnitPrice = decimal.NewFromInt(999)
	line.Quantity = 1
	require.NoError(t, db.Carts.AddLine(ctx, "u1", line))

	lines, err := db.Carts.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(100)))
}

func TestCheckoutStoreCommitIsAtomic(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	seedProduct(t, db, "p1", 100, 10)
	require.NoError(t, db.Carts.AddLine(ctx, "buyer", cart.Line{
		ProductID: "p1", UnitPrice: decimal.NewFromInt(100), Quantity: 2,
	}))
	require.NoError(t, db.Coupons.Create(ctx, &coupon.Coupon{
		ID: uuid.New().String(), Code: "WELCOME20",
		DiscountPercent: decimal.NewFromInt(20), Active: true, CreatedAt: time.Now(),
	}))

	o := &order.Order{
		ID:      uuid.New().String(),
		BuyerID: "buyer",
		Items: []order.Item{
			{ProductID: "p1", Name: "منتج p1", UnitPrice: decimal.NewFromInt(100), Quantity: 2},
		},
		Subtotal:        decimal.NewFromInt(200),
		ShippingFee:     decimal.NewFromInt(25),
		Discount:        decimal.NewFromInt(45),
		Total:           decimal.NewFromInt(180),
		CouponCode:      "WELCOME20",
		DisplayCurrency: currency.SAR,
		Status:          order.StatusPending,
		ShippingAddress: "King Road 1, Jeddah",
		PaymentMethod:   "cash on delivery",
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, db.Checkout.CommitOrder(ctx, o))

	// Order persisted with items.
	stored, err := db.Orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, stored.Status)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(180)))

	// Cart cleared.
	lines, err := db.Carts.Get(ctx, "buyer")
	require.NoError(t, err)
	assert.Empty(t, lines)

	// Stock decremented.
	p, err := db.Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)

	// Coupon usage incremented.
	c, err := db.Coupons.FindByCode(ctx, "WELCOME20")
	require.NoError(t, err)
	assert.Equal(t, 1, c.UsageCount)
}

func TestReviewsRefreshProductAggregates(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	seedProduct(t, db, "p1", 100, 10)

	add := func(id string, rating int, comment string) error {
		return db.Reviews.Add(ctx, product.Review{
			ID: id, ProductID: "p1", UserID: "u1", Author: "مشتري",
			Rating: rating, Comment: comment, CreatedAt: time.Now(),
		})
	}
	require.NoError(t, add("r1", 5, "رائع"))
	require.NoError(t, add("r2", 4, "جيد"))

	p, err := db.Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.ReviewsCount)
	assert.True(t, p.Rating.Equal(decimal.RequireFromString("4.5")))

	reviews, err := db.Reviews.ListByProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	err = db.Reviews.Add(ctx, product.Review{
		ID: "r3", ProductID: "missing", UserID: "u1", Rating: 3, CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, product.ErrNotFound)

	assert.ErrorIs(t, add("r4", 0, ""), product.ErrInvalidRating)
}

func TestOrderStatusLifecycle(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	o := &order.Order{
		ID:              uuid.New().String(),
		BuyerID:         "buyer",
		Items:           []order.Item{},
		Subtotal:        decimal.NewFromInt(100),
		ShippingFee:     decimal.NewFromInt(25),
		Discount:        decimal.Zero,
		Total:           decimal.NewFromInt(125),
		DisplayCurrency: currency.SAR,
		Status:          order.StatusPending,
		ShippingAddress: "a",
		PaymentMethod:   "cash on delivery",
		CreatedAt:       time.Now(),
	}
	require.NoError(t, db.Orders.Create(ctx, o))

	// Direct pending -> delivered; the lifecycle does not gate transitions.
	require.NoError(t, db.Orders.UpdateStatus(ctx, o.ID, order.StatusDelivered))

	stored, err := db.Orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, stored.Status)

	assert.ErrorIs(t, db.Orders.UpdateStatus(ctx, "missing", order.StatusShipped), order.ErrNotFound)
}

func TestExchangeRatesSeededAndEditable(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	rates, err := db.Rates.Get(ctx)
	require.NoError(t, err)
	assert.True(t, rates.USDDivisor.Equal(decimal.RequireFromString("3.75")))
	assert.True(t, rates.YERMultiplier.Equal(decimal.NewFromInt(145)))

	require.NoError(t, db.Rates.Update(ctx, currency.Rates{
		USDDivisor:    decimal.NewFromInt(4),
		YERMultiplier: decimal.NewFromInt(150),
	}))

	rates, err = db.Rates.Get(ctx)
	require.NoError(t, err)
	assert.True(t, rates.USDDivisor.Equal(decimal.NewFromInt(4)))
}
