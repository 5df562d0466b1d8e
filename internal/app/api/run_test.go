package api

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computerstore/storefront-api/internal/shared/ratelimit"
)

func TestBuildCheckoutLimiter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	limiter, closeFn, err := buildCheckoutLimiter(ctx, Config{CheckoutRateLimitPerMinute: 0}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, ratelimit.Unlimited, limiter)

	limiter, closeFn, err = buildCheckoutLimiter(ctx, Config{CheckoutRateLimitPerMinute: 2}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &ratelimit.Memory{}, limiter)

	// An unreachable redis degrades to the in-process limiter instead of failing startup.
	limiter, closeFn, err = buildCheckoutLimiter(ctx, Config{CheckoutRateLimitPerMinute: 2, RedisAddr: "127.0.0.1:1"}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &ratelimit.Memory{}, limiter)
}

func TestBuildStores_MemoryWhenNoDatabase(t *testing.T) {
	stores := buildStores(nil)
	assert.NotNil(t, stores.users)
	assert.NotNil(t, stores.products)
	assert.NotNil(t, stores.categories)
	assert.NotNil(t, stores.carts)
	assert.NotNil(t, stores.orders)
	assert.NotNil(t, stores.uow)
	assert.NotNil(t, stores.reviews)
	assert.Same(t, stores.products, stores.categories)
}
