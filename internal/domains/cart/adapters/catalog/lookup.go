// Package catalog adapts the catalog bounded context to the cart's product lookup port.
package catalog

import (
	"context"
	"errors"
	"fmt"

	cartports "github.com/computerstore/storefront-api/internal/domains/cart/ports"
	catalogports "github.com/computerstore/storefront-api/internal/domains/catalog/ports"
)

// ProductReader is the part of the catalog the cart reads from.
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (*catalogports.ProductProjection, error)
}

// Lookup resolves cart products through the catalog service.
type Lookup struct {
	products ProductReader
}

func NewLookup(products ProductReader) *Lookup {
	return &Lookup{products: products}
}

func (l *Lookup) LookupProduct(ctx context.Context, id int64) (cartports.ProductInfo, error) {
	p, err := l.products.GetProduct(ctx, id)
	if errors.Is(err, catalogports.ErrNotFound) {
		return cartports.ProductInfo{}, fmt.Errorf("product %d: %w", id, cartports.ErrProductNotFound)
	}
	if err != nil {
		return cartports.ProductInfo{}, err
	}
	return cartports.ProductInfo{
		ID:    p.Entity.ID,
		Name:  p.Entity.Name,
		Price: p.Entity.Price,
		Stock: p.Entity.Stock,
		Image: p.Entity.PrimaryImage(),
	}, nil
}

var _ cartports.ProductLookup = (*Lookup)(nil)
