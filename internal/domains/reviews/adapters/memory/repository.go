package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/computerstore/storefront-api/internal/domains/reviews/domain"
	"github.com/computerstore/storefront-api/internal/domains/reviews/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory review adapter.
type Repository struct {
	mu      sync.RWMutex
	reviews map[int64]*domain.Review
	nextID  int64
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{reviews: map[int64]*domain.Review{}, now: time.Now}
}

func (r *Repository) Create(_ context.Context, review *domain.Review) (*domain.Review, error) {
	if review == nil {
		return nil, errors.New("review is nil")
	}
	clone := review.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	now := r.now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone.ID = r.nextID
	clone.ReviewDate = now
	clone.UpdatedAt = now
	r.reviews[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return review.Clone(), nil
}

func (r *Repository) ListByProduct(_ context.Context, productID int64) ([]*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Review, 0)
	for _, review := range r.reviews {
		if review.ProductID == productID {
			out = append(out, review.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReviewDate.Equal(out[j].ReviewDate) {
			return out[i].ReviewDate.After(out[j].ReviewDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *Repository) Update(_ context.Context, review *domain.Review) (*domain.Review, error) {
	if review == nil {
		return nil, errors.New("review is nil")
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reviews[review.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	stored.Rating = review.Rating
	stored.Comment = review.Comment
	stored.UpdatedAt = r.now().UTC()
	return stored.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}
