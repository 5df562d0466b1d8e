package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/computerstore/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/computerstore/storefront-api/internal/domains/catalog/ports"
)

// Product is the JSON shape of a catalog product.
type Product struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"categoryId,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Category is the JSON shape of a product category.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FromProjection converts a stored product to its transport representation.
func FromProjection(p *catalogports.ProductProjection) Product {
	if p == nil || p.Entity == nil {
		return Product{}
	}
	images := p.Entity.Images
	if images == nil {
		images = []string{}
	}
	return Product{
		ID:          p.Entity.ID,
		CategoryID:  p.Entity.CategoryID,
		Name:        p.Entity.Name,
		Description: p.Entity.Description,
		Price:       p.Entity.Price,
		Stock:       p.Entity.Stock,
		Images:      images,
		CreatedAt:   p.Metadata.CreatedAt,
		UpdatedAt:   p.Metadata.UpdatedAt,
	}
}

// FromProjectionList converts a list of stored products.
func FromProjectionList(list []*catalogports.ProductProjection) []Product {
	result := make([]Product, 0, len(list))
	for _, p := range list {
		result = append(result, FromProjection(p))
	}
	return result
}

// FromDomainCategory converts a domain category.
func FromDomainCategory(c *catalogdomain.Category) Category {
	if c == nil {
		return Category{}
	}
	return Category{ID: c.ID, Name: c.Name, Description: c.Description}
}

// FromDomainCategories converts a list of domain categories.
func FromDomainCategories(list []*catalogdomain.Category) []Category {
	result := make([]Category, 0, len(list))
	for _, c := range list {
		result = append(result, FromDomainCategory(c))
	}
	return result
}
