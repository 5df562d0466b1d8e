package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/computerstore/storefront-api/internal/domains/catalog/domain"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

// CreateProductInput carries the fields of a new product.
type CreateProductInput struct {
	CategoryID  int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Images      []string
}

// UpdateProductInput applies the non-nil fields to an existing product.
type UpdateProductInput struct {
	ID          int64
	CategoryID  *int64
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Images      *[]string
}

// UpdateCategoryInput applies the non-nil fields to an existing category.
type UpdateCategoryInput struct {
	ID          int64
	Name        *string
	Description *string
}

// Service exposes catalog use cases to adapters.
type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]*ProductProjection, error)
	GetProduct(ctx context.Context, id int64) (*ProductProjection, error)
	CreateProduct(ctx context.Context, caller auth.Identity, input CreateProductInput) (*ProductProjection, error)
	UpdateProduct(ctx context.Context, caller auth.Identity, input UpdateProductInput) (*ProductProjection, error)
	DeleteProduct(ctx context.Context, caller auth.Identity, id int64) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, caller auth.Identity, name, description string) (*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	UpdateCategory(ctx context.Context, caller auth.Identity, input UpdateCategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, caller auth.Identity, id int64) error
}
