package ports

import (
	"context"
	"errors"

	"github.com/computerstore/storefront-api/internal/domains/reviews/domain"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrProductNotFound = errors.New("product not found")
)

// Repository persists product reviews.
type Repository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	// ListByProduct returns the product's reviews, newest first.
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
	// Update writes rating and comment.
	Update(ctx context.Context, review *domain.Review) (*domain.Review, error)
	Delete(ctx context.Context, id int64) error
}

// ProductCatalog confirms that a reviewed product exists.
type ProductCatalog interface {
	// EnsureProduct returns ErrProductNotFound for unknown ids.
	EnsureProduct(ctx context.Context, id int64) error
}
