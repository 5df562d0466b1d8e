package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName         = errors.New("product name is required")
	ErrNegativePrice     = errors.New("product price must not be negative")
	ErrNegativeStock     = errors.New("product stock must not be negative")
	ErrEmptyCategoryName = errors.New("category name is required")
)

// Category groups products for browsing.
type Category struct {
	ID          int64
	Name        string
	Description string
}

// NewCategory validates and constructs a category.
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCategoryName
	}
	return &Category{Name: name, Description: strings.TrimSpace(description)}, nil
}

// Rename trims and validates the category name.
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategoryName
	}
	c.Name = name
	return nil
}

// Product is a sellable catalog item with its on-hand stock.
type Product struct {
	ID          int64
	CategoryID  int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Images      []string
}

// NewProduct validates and constructs a product aggregate.
func NewProduct(categoryID int64, name, description string, price decimal.Decimal, stock int, images []string) (*Product, error) {
	p := &Product{
		CategoryID:  categoryID,
		Description: strings.TrimSpace(description),
		Images:      cleanImages(images),
	}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	if err := p.Reprice(price); err != nil {
		return nil, err
	}
	if err := p.SetStock(stock); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename trims and validates the display name.
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// Reprice updates the list price. Existing order lines keep their own snapshot.
func (p *Product) Reprice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	p.Price = price.Round(2)
	return nil
}

// SetStock overrides the on-hand quantity.
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	p.Stock = stock
	return nil
}

// ReplaceImages swaps the image list, dropping blank entries.
func (p *Product) ReplaceImages(images []string) {
	p.Images = cleanImages(images)
}

// PrimaryImage returns the first image URL, if any.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Validate re-applies invariants before persistence.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Images = append([]string(nil), p.Images...)
	return &clone
}

func cleanImages(images []string) []string {
	result := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			result = append(result, img)
		}
	}
	return result
}
