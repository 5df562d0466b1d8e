package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/computerstore/storefront-api/internal/domains/cart/domain"
	"github.com/computerstore/storefront-api/internal/domains/cart/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

// ErrInvalidInput signals the request violated a cart invariant.
var ErrInvalidInput = errors.New("invalid cart input")

// Service manages the per-user cart.
type Service struct {
	repo     ports.Repository
	products ports.ProductLookup
}

func NewService(repo ports.Repository, products ports.ProductLookup) *Service {
	return &Service{repo: repo, products: products}
}

// Get returns the caller's cart with current product data. Items whose
// product has disappeared from the catalog are skipped.
func (s *Service) Get(ctx context.Context, caller auth.Identity) (*ports.View, error) {
	items, err := s.repo.List(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	view := &ports.View{UserID: caller.UserID, Total: decimal.Zero, Lines: make([]ports.Line, 0, len(items))}
	for _, item := range items {
		info, err := s.products.LookupProduct(ctx, item.ProductID)
		if errors.Is(err, ports.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		subtotal := info.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, ports.Line{Item: item, Product: info, Subtotal: subtotal})
		view.Total = view.Total.Add(subtotal)
	}
	return view, nil
}

// AddItem adds quantity units of a product, merging with an existing item.
func (s *Service) AddItem(ctx context.Context, caller auth.Identity, productID int64, quantity int) (*domain.Item, error) {
	if quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	if _, err := s.products.LookupProduct(ctx, productID); err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, caller.UserID, productID)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		item, err := domain.NewItem(caller.UserID, productID, quantity)
		if err != nil {
			return nil, mapError(err)
		}
		return s.repo.Save(ctx, item)
	case err != nil:
		return nil, err
	}
	if err := existing.Add(quantity); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, existing)
}

// SetQuantity overwrites an item's quantity. Zero or less removes the item.
func (s *Service) SetQuantity(ctx context.Context, caller auth.Identity, productID int64, quantity int) (*domain.Item, error) {
	existing, err := s.repo.Get(ctx, caller.UserID, productID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, s.repo.Delete(ctx, caller.UserID, productID)
	}
	existing.Quantity = quantity
	return s.repo.Save(ctx, existing)
}

func (s *Service) RemoveItem(ctx context.Context, caller auth.Identity, productID int64) error {
	return s.repo.Delete(ctx, caller.UserID, productID)
}

func (s *Service) Clear(ctx context.Context, caller auth.Identity) error {
	return s.repo.DeleteAllForUser(ctx, caller.UserID)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidProductID) ||
		errors.Is(err, domain.ErrInvalidUserID) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
