package ports

import (
	"context"

	"github.com/computerstore/storefront-api/internal/domains/reviews/domain"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

// CreateInput carries a new review.
type CreateInput struct {
	ProductID int64
	Rating    int
	Comment   string
}

// UpdateInput applies the non-nil fields to an existing review.
type UpdateInput struct {
	ID      int64
	Rating  *int
	Comment *string
}

// Service exposes review use cases to adapters.
type Service interface {
	ListForProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
	Create(ctx context.Context, caller auth.Identity, input CreateInput) (*domain.Review, error)
	Update(ctx context.Context, caller auth.Identity, input UpdateInput) (*domain.Review, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
}
