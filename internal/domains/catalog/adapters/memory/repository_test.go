package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/computerstore/storefront-api/internal/domains/catalog/domain"
	"github.com/computerstore/storefront-api/internal/domains/catalog/ports"
)

func TestRepository_SaveAssignsIDsAndReturnsCopies(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	product, err := domain.NewProduct(0, "GPU-X", "", decimal.NewFromInt(500), 2, nil)
	require.NoError(t, err)
	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)
	require.Equal(t, int64(1), saved.Entity.ID)
	require.False(t, saved.Metadata.CreatedAt.IsZero())

	saved.Entity.Stock = 99
	fetched, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, fetched.Entity.Stock)
}

func TestRepository_AdjustStock(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	product, err := domain.NewProduct(0, "SSD", "", decimal.NewFromInt(90), 3, nil)
	require.NoError(t, err)
	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)

	require.NoError(t, repo.AdjustStock(ctx, saved.Entity.ID, -3))
	require.ErrorIs(t, repo.AdjustStock(ctx, saved.Entity.ID, -1), ErrStockUnderflow)
	require.ErrorIs(t, repo.AdjustStock(ctx, 404, 1), ports.ErrNotFound)

	fetched, err := repo.GetByID(ctx, saved.Entity.ID)
	require.NoError(t, err)
	require.Equal(t, 0, fetched.Entity.Stock)
}

func TestRepository_ListFiltersByCategory(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	for _, categoryID := range []int64{1, 2, 1} {
		p, err := domain.NewProduct(categoryID, "Item", "", decimal.NewFromInt(1), 1, nil)
		require.NoError(t, err)
		_, err = repo.Save(ctx, p)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, ports.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	filtered, err := repo.List(ctx, ports.ProductFilter{CategoryID: 1})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
}

func TestRepository_DeleteCategoryDetachesProducts(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	category, err := repo.SaveCategory(ctx, &domain.Category{Name: "Storage"})
	require.NoError(t, err)
	p, err := domain.NewProduct(category.ID, "NVMe", "", decimal.NewFromInt(120), 4, nil)
	require.NoError(t, err)
	saved, err := repo.Save(ctx, p)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCategory(ctx, category.ID))
	require.ErrorIs(t, repo.DeleteCategory(ctx, category.ID), ports.ErrCategoryNotFound)
	_, err = repo.GetCategory(ctx, category.ID)
	require.ErrorIs(t, err, ports.ErrCategoryNotFound)

	fetched, err := repo.GetByID(ctx, saved.Entity.ID)
	require.NoError(t, err)
	require.Zero(t, fetched.Entity.CategoryID)
}
