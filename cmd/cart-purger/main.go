package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/computerstore/storefront-api/internal/app/api"
	cartpostgres "github.com/computerstore/storefront-api/internal/domains/cart/adapters/persistence/postgres"
	platformobservability "github.com/computerstore/storefront-api/internal/platform/observability"
	platformpostgres "github.com/computerstore/storefront-api/internal/platform/postgres"
)

// cart-purger removes cart items nobody has touched for CART_TTL_HOURS.
// It is meant to run from cron against the same database as the API.
func main() {
	if err := run(); err != nil {
		log.Fatalf("cart purge failed: %v", err)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		return err
	}
	logger := platformobservability.NewLogger(os.Stdout, cfg.LogLevel, "text")

	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, platformpostgres.PoolOptions{MaxOpenConns: 1}, logger)
	defer cleanup()
	if db == nil {
		return errors.New("POSTGRES_DSN not set or connection failed")
	}

	cutoff := time.Now().Add(-cfg.CartTTL())
	removed, err := cartpostgres.NewRepository(db).PurgeStale(ctx, cutoff)
	if err != nil {
		return err
	}
	logger.Info("cart purge completed", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
	return nil
}
