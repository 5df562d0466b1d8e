package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/computerstore/storefront-api/internal/domains/cart/domain"
)

var (
	ErrNotFound        = errors.New("cart item not found")
	ErrProductNotFound = errors.New("product not found")
)

// Repository persists cart items keyed by (user, product).
type Repository interface {
	List(ctx context.Context, userID int64) ([]*domain.Item, error)
	Get(ctx context.Context, userID, productID int64) (*domain.Item, error)
	Save(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Delete(ctx context.Context, userID, productID int64) error
	DeleteAllForUser(ctx context.Context, userID int64) error
	PurgeStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// ProductInfo is the catalog view a cart needs for display and validation.
type ProductInfo struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
	Image string
}

// ProductLookup resolves products referenced by cart items.
type ProductLookup interface {
	LookupProduct(ctx context.Context, id int64) (ProductInfo, error)
}
