package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	cartcatalog "github.com/computerstore/storefront-api/internal/domains/cart/adapters/catalog"
	cartmemory "github.com/computerstore/storefront-api/internal/domains/cart/adapters/memory"
	"github.com/computerstore/storefront-api/internal/domains/cart/domain"
	"github.com/computerstore/storefront-api/internal/domains/cart/ports"
	catalogmemory "github.com/computerstore/storefront-api/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/computerstore/storefront-api/internal/domains/catalog/application"
	catalogdomain "github.com/computerstore/storefront-api/internal/domains/catalog/domain"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

var alice = auth.Identity{UserID: 10, Username: "alice", Role: auth.RoleCustomer}

func newTestService(t *testing.T) (*Service, *cartmemory.Repository, int64, int64) {
	t.Helper()
	ctx := context.Background()
	products := catalogmemory.NewRepository()
	gpu, err := catalogdomain.NewProduct(0, "GPU-X", "", decimal.RequireFromString("500.00"), 2, []string{"gpu.png"})
	require.NoError(t, err)
	savedGPU, err := products.Save(ctx, gpu)
	require.NoError(t, err)
	ram, err := catalogdomain.NewProduct(0, "RAM 32GB", "", decimal.RequireFromString("79.90"), 10, nil)
	require.NoError(t, err)
	savedRAM, err := products.Save(ctx, ram)
	require.NoError(t, err)

	carts := cartmemory.NewRepository()
	lookup := cartcatalog.NewLookup(catalogapp.NewService(products, products))
	return NewService(carts, lookup), carts, savedGPU.Entity.ID, savedRAM.Entity.ID
}

func TestAddItem_MergesQuantities(t *testing.T) {
	svc, _, gpuID, ramID := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, alice, gpuID, 1)
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, alice, gpuID, 2)
	require.NoError(t, err)
	require.Equal(t, 3, item.Quantity)

	_, err = svc.AddItem(ctx, alice, ramID, 2)
	require.NoError(t, err)

	view, err := svc.Get(ctx, alice)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	require.True(t, view.Total.Equal(decimal.RequireFromString("1659.80")), view.Total.String())
}

func TestAddItem_Validates(t *testing.T) {
	svc, _, gpuID, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, alice, gpuID, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, alice, 999, 1)
	require.ErrorIs(t, err, ports.ErrProductNotFound)
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	svc, carts, gpuID, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, alice, gpuID, 1)
	require.NoError(t, err)
	updated, err := svc.SetQuantity(ctx, alice, gpuID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, updated.Quantity)

	removed, err := svc.SetQuantity(ctx, alice, gpuID, 0)
	require.NoError(t, err)
	require.Nil(t, removed)
	_, err = carts.Get(ctx, alice.UserID, gpuID)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestClear(t *testing.T) {
	svc, _, gpuID, ramID := newTestService(t)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, alice, gpuID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, alice, ramID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, alice))
	view, err := svc.Get(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, view.Lines)
	require.True(t, view.Total.IsZero())
}
