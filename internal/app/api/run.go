package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	storefrontserver "github.com/computerstore/storefront-api/go"

	cartcatalog "github.com/computerstore/storefront-api/internal/domains/cart/adapters/catalog"
	cartmemory "github.com/computerstore/storefront-api/internal/domains/cart/adapters/memory"
	cartobs "github.com/computerstore/storefront-api/internal/domains/cart/adapters/observability"
	cartpostgres "github.com/computerstore/storefront-api/internal/domains/cart/adapters/persistence/postgres"
	cartapp "github.com/computerstore/storefront-api/internal/domains/cart/application"
	cartports "github.com/computerstore/storefront-api/internal/domains/cart/ports"

	catalogmemory "github.com/computerstore/storefront-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/computerstore/storefront-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/computerstore/storefront-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/computerstore/storefront-api/internal/domains/catalog/application"
	catalogports "github.com/computerstore/storefront-api/internal/domains/catalog/ports"

	ordercustomers "github.com/computerstore/storefront-api/internal/domains/orders/adapters/customers"
	orderevents "github.com/computerstore/storefront-api/internal/domains/orders/adapters/events"
	ordermemory "github.com/computerstore/storefront-api/internal/domains/orders/adapters/memory"
	orderobs "github.com/computerstore/storefront-api/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/computerstore/storefront-api/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/computerstore/storefront-api/internal/domains/orders/application"
	orderports "github.com/computerstore/storefront-api/internal/domains/orders/ports"

	reviewcatalog "github.com/computerstore/storefront-api/internal/domains/reviews/adapters/catalog"
	reviewmemory "github.com/computerstore/storefront-api/internal/domains/reviews/adapters/memory"
	reviewobs "github.com/computerstore/storefront-api/internal/domains/reviews/adapters/observability"
	reviewpostgres "github.com/computerstore/storefront-api/internal/domains/reviews/adapters/persistence/postgres"
	reviewapp "github.com/computerstore/storefront-api/internal/domains/reviews/application"
	reviewports "github.com/computerstore/storefront-api/internal/domains/reviews/ports"

	usermemory "github.com/computerstore/storefront-api/internal/domains/users/adapters/memory"
	userobs "github.com/computerstore/storefront-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/computerstore/storefront-api/internal/domains/users/adapters/persistence/postgres"
	usertoken "github.com/computerstore/storefront-api/internal/domains/users/adapters/token"
	userapp "github.com/computerstore/storefront-api/internal/domains/users/application"
	userports "github.com/computerstore/storefront-api/internal/domains/users/ports"

	"github.com/computerstore/storefront-api/internal/platform/migrations"
	platformobservability "github.com/computerstore/storefront-api/internal/platform/observability"
	platformpostgres "github.com/computerstore/storefront-api/internal/platform/postgres"
	"github.com/computerstore/storefront-api/internal/shared/ratelimit"
)

// Run boots the storefront HTTP API and blocks until ctx is cancelled or the
// server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Settings{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
		LogFormat:   cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, platformpostgres.PoolOptions{
		MaxOpenConns:    cfg.PostgresMaxConns,
		MaxIdleConns:    cfg.PostgresIdleConns,
		ConnMaxLifetime: time.Duration(cfg.PostgresConnMaxAge) * time.Minute,
	}, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	stores := buildStores(db)

	secret := cfg.JWTSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	issuer, err := usertoken.NewIssuer(secret, cfg.JWTTTL())
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}
	coreUsers := userapp.NewService(stores.users, issuer)
	if cfg.AdminUsername != "" {
		if _, err := coreUsers.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin %q: %w", cfg.AdminUsername, err)
		}
		logger.Info("admin account ensured", slog.String("username", cfg.AdminUsername))
	}
	userService := userobs.New(coreUsers,
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	catalogService := catalogobs.New(catalogapp.NewService(stores.products, stores.categories),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
	)

	cartService := cartobs.New(cartapp.NewService(stores.carts, cartcatalog.NewLookup(catalogService)),
		cartobs.WithLogger(logger),
		cartobs.WithTracer(instruments.Tracer("internal.cart.application")),
		cartobs.WithMeter(instruments.Meter("internal.cart.application")),
	)

	reviewService := reviewobs.New(reviewapp.NewService(stores.reviews, reviewcatalog.NewProducts(catalogService)),
		reviewobs.WithLogger(logger),
		reviewobs.WithTracer(instruments.Tracer("internal.reviews.application")),
	)

	orderOpts := []orderapp.Option{
		orderapp.WithCustomerDirectory(ordercustomers.NewDirectory(stores.userLister)),
		orderapp.WithCancelRestock(cfg.OrderCancelRestock),
		orderapp.WithLogger(logger),
	}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher, err := orderevents.NewPublisher(orderevents.Config{
			Brokers: brokers,
			Topic:   cfg.KafkaOrderTopic,
		}, orderevents.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("order event publisher: %w", err)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close order event publisher", slog.String("error", err.Error()))
			}
		}()
		orderOpts = append(orderOpts, orderapp.WithEventPublisher(publisher))
		logger.Info("order events enabled", slog.String("topic", cfg.KafkaOrderTopic))
	}
	orderService := orderobs.New(orderapp.NewService(stores.orders, stores.uow, orderOpts...),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	limiter, closeLimiter, err := buildCheckoutLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	responder := storefrontserver.NewResponder(logger)
	handlers := storefrontserver.ApiHandleFunctions{
		UserAPI:         storefrontserver.NewUserAPI(userService, responder),
		CatalogAPI:      storefrontserver.NewCatalogAPI(catalogService, responder),
		CartAPI:         storefrontserver.NewCartAPI(cartService, responder),
		OrderAPI:        storefrontserver.NewOrderAPI(orderService, responder),
		ReviewAPI:       storefrontserver.NewReviewAPI(reviewService, responder),
		Authenticator:   userService,
		CheckoutLimiter: limiter,
		Responder:       responder,
		Logger:          logger,
	}
	router := gin.New()
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(storefrontserver.DefaultMiddleware(handlers)...)
	storefrontserver.NewRouterWithGinEngine(router, handlers)

	return serve(ctx, &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, cfg.ShutdownTimeout(), logger)
}

type storeSet struct {
	users      userports.Repository
	userLister ordercustomers.UserLister
	products   catalogports.ProductRepository
	categories catalogports.CategoryRepository
	carts      cartports.Repository
	orders     orderports.Repository
	uow        orderports.UnitOfWork
	reviews    reviewports.Repository
}

// buildStores picks postgres adapters when db is set and in-memory ones otherwise.
func buildStores(db *gorm.DB) storeSet {
	if db != nil {
		users := userpostgres.NewRepository(db)
		catalog := catalogpostgres.NewRepository(db)
		return storeSet{
			users:      users,
			userLister: users,
			products:   catalog,
			categories: catalog,
			carts:      cartpostgres.NewRepository(db),
			orders:     orderpostgres.NewRepository(db),
			uow:        orderpostgres.NewUnitOfWork(db),
			reviews:    reviewpostgres.NewRepository(db),
		}
	}
	users := usermemory.NewRepository()
	catalog := catalogmemory.NewRepository()
	carts := cartmemory.NewRepository()
	orders := ordermemory.NewRepository()
	return storeSet{
		users:      users,
		userLister: users,
		products:   catalog,
		categories: catalog,
		carts:      carts,
		orders:     orders,
		uow:        ordermemory.NewUnitOfWork(orders, catalog, carts),
		reviews:    reviewmemory.NewRepository(),
	}
}

func buildCheckoutLimiter(ctx context.Context, cfg Config, logger *slog.Logger) (ratelimit.Limiter, func(), error) {
	limit := ratelimit.Config{Limit: cfg.CheckoutRateLimitPerMinute, Window: time.Minute}
	if limit.Limit == 0 {
		logger.Info("checkout rate limiting disabled")
		return ratelimit.Unlimited, func() {}, nil
	}
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemory(limit), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	closeClient := func() { _ = client.Close() }
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		closeClient()
		logger.Warn("redis unreachable, using in-process checkout limiter", slog.String("error", err.Error()))
		return ratelimit.NewMemory(limit), func() {}, nil
	}
	limiter, err := ratelimit.NewRedis(client, limit, "storefront:checkout")
	if err != nil {
		closeClient()
		return nil, nil, fmt.Errorf("checkout limiter: %w", err)
	}
	logger.Info("checkout rate limiting backed by redis", slog.String("addr", cfg.RedisAddr))
	return limiter, closeClient, nil
}

func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("storefront API listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("storefront API shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func randomSecret() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
