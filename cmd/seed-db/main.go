// Command seed-db loads the demo catalog, shipping options, coupons, and
// accounts into the database. Safe to re-run; every insert is an upsert.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/alhussam/store-api/internal/repository"
)

type productJSON struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	Brand        string          `json:"brand"`
	Description  string          `json:"description"`
	Images       []string        `json:"images"`
	Stock        int             `json:"stock"`
	Rating       decimal.Decimal `json:"rating"`
	ReviewsCount int             `json:"reviews_count"`
}

type shippingJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	FlatFee       decimal.Decimal `json:"flat_fee"`
	Description   string          `json:"description"`
	EstimatedDays string          `json:"estimated_days"`
	SortOrder     int             `json:"sort_order"`
}

type couponJSON struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Active          bool            `json:"active"`
}

type userJSON struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func main() {
	var (
		databaseURL string
		seedDir     string
		pepper      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedDir, "seed-dir", "db/seed", "directory with seed JSON files")
	flag.StringVar(&pepper, "secret-pepper", "", "HMAC pepper for password hashing (or HUSSAM_SECRET_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if pepper == "" {
		pepper = os.Getenv("HUSSAM_SECRET_PEPPER")
	}
	if pepper == "" {
		slog.Error("pepper is required: set --secret-pepper or HUSSAM_SECRET_PEPPER")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedDir, pepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedDir, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, seedDir+"/products.json"); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedShippingOptions(ctx, pool, seedDir+"/shipping_options.json"); err != nil {
		return errors.Wrap(err, "seed shipping options")
	}
	if err := seedCoupons(ctx, pool, seedDir+"/coupons.json"); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedUsers(ctx, pool, seedDir+"/users.json", pepper); err != nil {
		return errors.Wrap(err, "seed users")
	}
	return nil
}

func readJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "parse JSON")
	}
	return out, nil
}

const upsertProductSQL = `INSERT INTO products
	(id, name, price, category, brand, description, images, stock, rating, reviews_count)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, price = EXCLUDED.price, category = EXCLUDED.category,
		brand = EXCLUDED.brand, description = EXCLUDED.description, images = EXCLUDED.images,
		stock = EXCLUDED.stock, rating = EXCLUDED.rating, reviews_count = EXCLUDED.reviews_count`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, path string) error {
	products, err := readJSON[productJSON](path)
	if err != nil {
		return err
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		images, err := json.Marshal(p.Images)
		if err != nil {
			return errors.Wrapf(err, "marshal images for %s", p.ID)
		}
		_, err = pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Price, p.Category, p.Brand, p.Description,
			images, p.Stock, p.Rating, p.ReviewsCount,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}
	return nil
}

const upsertShippingSQL = `INSERT INTO shipping_options
	(id, name, flat_fee, description, estimated_days, sort_order)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, flat_fee = EXCLUDED.flat_fee,
		description = EXCLUDED.description, estimated_days = EXCLUDED.estimated_days,
		sort_order = EXCLUDED.sort_order`

func seedShippingOptions(ctx context.Context, pool *pgxpool.Pool, path string) error {
	options, err := readJSON[shippingJSON](path)
	if err != nil {
		return err
	}

	slog.Info("upserting shipping options", slog.Int("count", len(options)))

	for _, o := range options {
		_, err := pool.Exec(ctx, upsertShippingSQL,
			o.ID, o.Name, o.FlatFee, o.Description, o.EstimatedDays, o.SortOrder,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert shipping option %s", o.ID)
		}
		slog.Info("upserted shipping option", slog.String("id", o.ID))
	}
	return nil
}

const upsertCouponSQL = `INSERT INTO coupons
	(id, code, discount_percent, expires_at, active, usage_count, created_at)
	VALUES ($1, $2, $3, NULL, $4, 0, $5)
	ON CONFLICT (code) DO UPDATE SET
		discount_percent = EXCLUDED.discount_percent, active = EXCLUDED.active`

func seedCoupons(ctx context.Context, pool *pgxpool.Pool, path string) error {
	coupons, err := readJSON[couponJSON](path)
	if err != nil {
		return err
	}

	slog.Info("upserting coupons", slog.Int("count", len(coupons)))

	for _, c := range coupons {
		_, err := pool.Exec(ctx, upsertCouponSQL,
			uuid.New().String(), c.Code, c.DiscountPercent, c.Active, time.Now(),
		)
		if err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.Code)
		}
		slog.Info("upserted coupon", slog.String("code", c.Code))
	}
	return nil
}

const upsertUserSQL = `INSERT INTO users
	(id, name, email, password_hash, role, joined_at, addresses)
	VALUES ($1, $2, $3, $4, $5, $6, '[]')
	ON CONFLICT (email) DO UPDATE SET
		name = EXCLUDED.name, password_hash = EXCLUDED.password_hash, role = EXCLUDED.role`

func seedUsers(ctx context.Context, pool *pgxpool.Pool, path, pepper string) error {
	users, err := readJSON[userJSON](path)
	if err != nil {
		return err
	}

	slog.Info("upserting users", slog.Int("count", len(users)))

	for _, u := range users {
		mac := hmac.New(sha256.New, []byte(pepper))
		mac.Write([]byte(u.Password))
		hash := hex.EncodeToString(mac.Sum(nil))

		_, err := pool.Exec(ctx, upsertUserSQL,
			uuid.New().String(), u.Name, u.Email, hash, u.Role, time.Now(),
		)
		if err != nil {
			return errors.Wrapf(err, "upsert user %s", u.Email)
		}
		slog.Info("upserted user", slog.String("email", u.Email), slog.String("role", u.Role))
	}
	return nil
}
