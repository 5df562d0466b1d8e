package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/computerstore/storefront-api/internal/domains/catalog/domain"
	"github.com/computerstore/storefront-api/internal/domains/catalog/ports"
	"github.com/computerstore/storefront-api/internal/shared/projection"
)

var (
	_ ports.ProductRepository  = (*Repository)(nil)
	_ ports.CategoryRepository = (*Repository)(nil)
)

// ErrStockUnderflow is returned by AdjustStock when the result would be negative.
var ErrStockUnderflow = errors.New("stock adjustment would go below zero")

type productEntry struct {
	product   *domain.Product
	createdAt time.Time
	updatedAt time.Time
}

// Repository is an in-memory catalog adapter for products and categories.
type Repository struct {
	mu             sync.RWMutex
	products       map[int64]*productEntry
	categories     map[int64]*domain.Category
	nextProductID  int64
	nextCategoryID int64
}

func NewRepository() *Repository {
	return &Repository{
		products:   map[int64]*productEntry{},
		categories: map[int64]*domain.Category{},
	}
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*ports.ProductProjection, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := product.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := &productEntry{product: clone, createdAt: now, updatedAt: now}
	if clone.ID == 0 {
		r.nextProductID++
		clone.ID = r.nextProductID
	} else if existing, ok := r.products[clone.ID]; ok {
		entry.createdAt = existing.createdAt
	} else if clone.ID > r.nextProductID {
		r.nextProductID = clone.ID
	}
	r.products[clone.ID] = entry
	return entry.project(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*ports.ProductProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return entry.project(), nil
}

func (r *Repository) List(_ context.Context, filter ports.ProductFilter) ([]*ports.ProductProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*ports.ProductProjection, 0, len(r.products))
	for _, entry := range r.products {
		if filter.CategoryID != 0 && entry.product.CategoryID != filter.CategoryID {
			continue
		}
		list = append(list, entry.project())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Entity.ID < list[j].Entity.ID })
	return list, nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// AdjustStock atomically adds delta to the product stock.
func (r *Repository) AdjustStock(_ context.Context, id int64, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.products[id]
	if !ok {
		return ports.ErrNotFound
	}
	if entry.product.Stock+delta < 0 {
		return fmt.Errorf("product %d: %w", id, ErrStockUnderflow)
	}
	entry.product.Stock += delta
	entry.updatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) SaveCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, errors.New("category is nil")
	}
	clone := *category
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextCategoryID++
		clone.ID = r.nextCategoryID
	} else if clone.ID > r.nextCategoryID {
		r.nextCategoryID = clone.ID
	}
	r.categories[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *Repository) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, ports.ErrCategoryNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *Repository) ListCategories(_ context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		clone := *category
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Repository) DeleteCategory(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return ports.ErrCategoryNotFound
	}
	delete(r.categories, id)
	now := time.Now().UTC()
	for _, entry := range r.products {
		if entry.product.CategoryID == id {
			entry.product.CategoryID = 0
			entry.updatedAt = now
		}
	}
	return nil
}

func (e *productEntry) project() *ports.ProductProjection {
	return projection.New(e.product.Clone(), e.createdAt, e.updatedAt)
}
