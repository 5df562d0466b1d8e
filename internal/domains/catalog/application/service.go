package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/computerstore/storefront-api/internal/domains/catalog/domain"
	"github.com/computerstore/storefront-api/internal/domains/catalog/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

// Service orchestrates catalog use cases.
type Service struct {
	products   ports.ProductRepository
	categories ports.CategoryRepository
}

func NewService(products ports.ProductRepository, categories ports.CategoryRepository) *Service {
	return &Service{products: products, categories: categories}
}

func (s *Service) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]*ports.ProductProjection, error) {
	return s.products.List(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*ports.ProductProjection, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, caller auth.Identity, input ports.CreateProductInput) (*ports.ProductProjection, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	product, err := domain.NewProduct(input.CategoryID, input.Name, input.Description, input.Price, input.Stock, input.Images)
	if err != nil {
		return nil, mapError(err)
	}
	return s.products.Save(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, caller auth.Identity, input ports.UpdateProductInput) (*ports.ProductProjection, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	existing, err := s.products.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	product := existing.Entity
	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *input.CategoryID
	}
	if input.Name != nil {
		if err := product.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if err := product.Reprice(*input.Price); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Stock != nil {
		if err := product.SetStock(*input.Stock); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Images != nil {
		product.ReplaceImages(*input.Images)
	}
	return s.products.Save(ctx, product)
}

func (s *Service) DeleteProduct(ctx context.Context, caller auth.Identity, id int64) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, caller auth.Identity, name, description string) (*domain.Category, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	category, err := domain.NewCategory(name, description)
	if err != nil {
		return nil, mapError(err)
	}
	return s.categories.SaveCategory(ctx, category)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetCategory(ctx, id)
}

func (s *Service) UpdateCategory(ctx context.Context, caller auth.Identity, input ports.UpdateCategoryInput) (*domain.Category, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	category, err := s.categories.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if err := category.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	return s.categories.SaveCategory(ctx, category)
}

func (s *Service) DeleteCategory(ctx context.Context, caller auth.Identity, id int64) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}
	return s.categories.DeleteCategory(ctx, id)
}

// ensureCategory accepts zero as "uncategorised".
func (s *Service) ensureCategory(ctx context.Context, id int64) error {
	if id == 0 {
		return nil
	}
	if _, err := s.categories.GetCategory(ctx, id); err != nil {
		return fmt.Errorf("category %d: %w", id, err)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
