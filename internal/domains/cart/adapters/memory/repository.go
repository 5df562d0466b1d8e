package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/computerstore/storefront-api/internal/domains/cart/domain"
	"github.com/computerstore/storefront-api/internal/domains/cart/ports"
)

var _ ports.Repository = (*Repository)(nil)

type key struct {
	userID    int64
	productID int64
}

// Repository is an in-memory cart adapter.
type Repository struct {
	mu    sync.RWMutex
	items map[key]*domain.Item
	now   func() time.Time
}

func NewRepository() *Repository {
	return &Repository{items: map[key]*domain.Item{}, now: time.Now}
}

func (r *Repository) List(_ context.Context, userID int64) ([]*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Item
	for k, item := range r.items {
		if k.userID != userID {
			continue
		}
		clone := *item
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].AddedAt.Before(list[j].AddedAt) })
	return list, nil
}

func (r *Repository) Get(_ context.Context, userID, productID int64) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[key{userID, productID}]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *Repository) Save(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("cart item is nil")
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	clone := *item
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{clone.UserID, clone.ProductID}
	if existing, ok := r.items[k]; ok {
		clone.AddedAt = existing.AddedAt
	} else if clone.AddedAt.IsZero() {
		clone.AddedAt = r.now().UTC()
	}
	r.items[k] = &clone
	result := clone
	return &result, nil
}

func (r *Repository) Delete(_ context.Context, userID, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{userID, productID}
	if _, ok := r.items[k]; !ok {
		return ports.ErrNotFound
	}
	delete(r.items, k)
	return nil
}

func (r *Repository) DeleteAllForUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.items {
		if k.userID == userID {
			delete(r.items, k)
		}
	}
	return nil
}

func (r *Repository) PurgeStale(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for k, item := range r.items {
		if item.AddedAt.Before(olderThan) {
			delete(r.items, k)
			purged++
		}
	}
	return purged, nil
}
