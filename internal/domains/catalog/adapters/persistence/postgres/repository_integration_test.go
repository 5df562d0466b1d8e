//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computerstore/storefront-api/internal/domains/catalog/domain"
	"github.com/computerstore/storefront-api/internal/domains/catalog/ports"
	"github.com/computerstore/storefront-api/internal/platform/postgres/pgtest"
)

func TestRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	category, err := repo.SaveCategory(ctx, &domain.Category{Name: "Graphics"})
	require.NoError(t, err)

	product, err := domain.NewProduct(category.ID, "GPU-X", "flagship", decimal.RequireFromString("799.99"), 2, []string{"gpu.png"})
	require.NoError(t, err)
	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)
	require.NotZero(t, saved.Entity.ID)

	fetched, err := repo.GetByID(ctx, saved.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, "GPU-X", fetched.Entity.Name)
	assert.True(t, fetched.Entity.Price.Equal(decimal.RequireFromString("799.99")))
	assert.Equal(t, []string{"gpu.png"}, fetched.Entity.Images)
	assert.Equal(t, category.ID, fetched.Entity.CategoryID)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	product, err := domain.NewProduct(0, "SSD", "", decimal.NewFromInt(90), 5, nil)
	require.NoError(t, err)
	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)

	require.NoError(t, saved.Entity.SetStock(7))
	updated, err := repo.Save(ctx, saved.Entity)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Entity.Stock)

	list, err := repo.List(ctx, ports.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, saved.Entity.ID))
	_, err = repo.GetByID(ctx, saved.Entity.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, saved.Entity.ID), ports.ErrNotFound)
}
