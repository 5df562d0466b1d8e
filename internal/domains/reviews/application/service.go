package application

import (
	"context"
	"fmt"

	"github.com/computerstore/storefront-api/internal/domains/reviews/domain"
	"github.com/computerstore/storefront-api/internal/domains/reviews/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

// Service orchestrates review use cases.
type Service struct {
	reviews  ports.Repository
	products ports.ProductCatalog
}

func NewService(reviews ports.Repository, products ports.ProductCatalog) *Service {
	return &Service{reviews: reviews, products: products}
}

func (s *Service) ListForProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	if err := s.products.EnsureProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.ListByProduct(ctx, productID)
}

// Create records a review by the caller. Any signed-in user may review.
func (s *Service) Create(ctx context.Context, caller auth.Identity, input ports.CreateInput) (*domain.Review, error) {
	if err := auth.RequireUser(caller); err != nil {
		return nil, err
	}
	review, err := domain.NewReview(caller.UserID, input.ProductID, input.Rating, input.Comment)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.products.EnsureProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}
	return s.reviews.Create(ctx, review)
}

// Update lets the author or an admin change rating and comment.
func (s *Service) Update(ctx context.Context, caller auth.Identity, input ports.UpdateInput) (*domain.Review, error) {
	review, err := s.authorised(ctx, caller, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Rating != nil {
		if err := review.Rate(*input.Rating); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Comment != nil {
		review.SetComment(*input.Comment)
	}
	return s.reviews.Update(ctx, review)
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if _, err := s.authorised(ctx, caller, id); err != nil {
		return err
	}
	return s.reviews.Delete(ctx, id)
}

func (s *Service) authorised(ctx context.Context, caller auth.Identity, id int64) (*domain.Review, error) {
	if err := auth.RequireUser(caller); err != nil {
		return nil, err
	}
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(review.UserID) {
		return nil, fmt.Errorf("%w: review %d belongs to another user", auth.ErrForbidden, id)
	}
	return review, nil
}

var _ ports.Service = (*Service)(nil)
