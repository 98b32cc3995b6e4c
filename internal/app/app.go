// Package app wires configuration, storage, services, and the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/alhussam/store-api/internal/assistant"
	"github.com/alhussam/store-api/internal/domain/checkout"
	"github.com/alhussam/store-api/internal/domain/coupon"
	"github.com/alhussam/store-api/internal/domain/order"
	"github.com/alhussam/store-api/internal/domain/user"
	"github.com/alhussam/store-api/internal/events"
	"github.com/alhussam/store-api/internal/handler"
	"github.com/alhussam/store-api/internal/repository"
	"github.com/alhussam/store-api/internal/session"
	"github.com/alhussam/store-api/pkg/health"
	"github.com/alhussam/store-api/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Session store: Redis when configured, in-process memory otherwise.
	var sessions session.Store = session.NewMemory()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return errors.Wrap(err, "ping redis")
		}
		sessions = session.NewRedis(rdb)
	} else {
		lg.Warn("No Redis configured, sessions are in-memory and node-local")
	}

	// Event publisher: Kafka when configured, otherwise a no-op.
	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers)
		if err != nil {
			return errors.Wrap(err, "create kafka publisher")
		}
		publisher = kafka
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			lg.Warn("Close publisher", zap.Error(err))
		}
	}()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	favoritesRepo := repository.NewFavoritesRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	shippingRepo := repository.NewShippingRepository(pool)
	ratesRepo := repository.NewRatesRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	checkoutStore := repository.NewCheckoutStore(pool)

	// Domain services.
	evaluator := coupon.NewRepoEvaluator(couponRepo)
	userService := user.NewService(userRepo, sessions, []byte(cfg.SecretPepper))
	orderService := order.NewService(orderRepo, publisher, lg.Named("orders"))
	checkoutService := checkout.NewService(
		productRepo, cartRepo, shippingRepo,
		evaluator, checkoutStore, publisher,
		lg.Named("checkout"),
	)
	assistantClient := assistant.NewClient(cfg.Assistant.BaseURL, cfg.Assistant.APIKey)

	// HTTP routes: health endpoints + API router on one server.
	h := handler.New(handler.Deps{
		Products:  productRepo,
		Reviews:   reviewRepo,
		Carts:     cartRepo,
		Favorites: favoritesRepo,
		Shippings: shippingRepo,
		Coupons:   couponRepo,
		Evaluator: evaluator,
		Rates:     ratesRepo,
		Users:     userService,
		Orders:    orderService,
		Checkout:  checkoutService,
		Assistant: assistantClient,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	instrumented := otelhttp.NewHandler(mux, "store-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      60 * time.Second, // assistant SSE streams
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowCredentials: cfg.CORS.AllowCredentials,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
