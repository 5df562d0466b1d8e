package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/computerstore/storefront-api/internal/domains/cart/domain"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

// Line is a cart item enriched with its current catalog data.
type Line struct {
	Item     *domain.Item
	Product  ProductInfo
	Subtotal decimal.Decimal
}

// View is a user's cart as displayed at checkout.
type View struct {
	UserID int64
	Lines  []Line
	Total  decimal.Decimal
}

// Service exposes cart use cases to adapters.
type Service interface {
	Get(ctx context.Context, caller auth.Identity) (*View, error)
	AddItem(ctx context.Context, caller auth.Identity, productID int64, quantity int) (*domain.Item, error)
	SetQuantity(ctx context.Context, caller auth.Identity, productID int64, quantity int) (*domain.Item, error)
	RemoveItem(ctx context.Context, caller auth.Identity, productID int64) error
	Clear(ctx context.Context, caller auth.Identity) error
}
