// Package catalog adapts the catalog bounded context to the review product port.
package catalog

import (
	"context"
	"errors"
	"fmt"

	catalogports "github.com/computerstore/storefront-api/internal/domains/catalog/ports"
	reviewports "github.com/computerstore/storefront-api/internal/domains/reviews/ports"
)

// ProductReader is the part of the catalog reviews read from.
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (*catalogports.ProductProjection, error)
}

// Products checks reviewed products through the catalog service.
type Products struct {
	products ProductReader
}

func NewProducts(products ProductReader) *Products {
	return &Products{products: products}
}

func (p *Products) EnsureProduct(ctx context.Context, id int64) error {
	_, err := p.products.GetProduct(ctx, id)
	if errors.Is(err, catalogports.ErrNotFound) {
		return fmt.Errorf("product %d: %w", id, reviewports.ErrProductNotFound)
	}
	return err
}

var _ reviewports.ProductCatalog = (*Products)(nil)
