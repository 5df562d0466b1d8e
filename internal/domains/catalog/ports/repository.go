package ports

import (
	"context"
	"errors"

	"github.com/computerstore/storefront-api/internal/domains/catalog/domain"
	"github.com/computerstore/storefront-api/internal/shared/projection"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// ProductProjection is a product plus its persistence timestamps.
type ProductProjection = projection.Projection[*domain.Product]

// ProductFilter narrows product listings. Zero values match everything.
type ProductFilter struct {
	CategoryID int64
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) (*ProductProjection, error)
	GetByID(ctx context.Context, id int64) (*ProductProjection, error)
	List(ctx context.Context, filter ProductFilter) ([]*ProductProjection, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository persists product categories.
type CategoryRepository interface {
	SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	// DeleteCategory removes the category and leaves its products uncategorised.
	DeleteCategory(ctx context.Context, id int64) error
}
