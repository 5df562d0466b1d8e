package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/computerstore/storefront-api/internal/domains/users/domain"
	"github.com/computerstore/storefront-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user persistence adapter.
type Repository struct {
	mu         sync.RWMutex
	users      map[int64]*domain.User
	byUsername map[string]int64
	nextID     int64
}

func NewRepository() *Repository {
	return &Repository{users: map[int64]*domain.User{}, byUsername: map[string]int64{}}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (r *Repository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := user.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	key := normalize(clone.Username)

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, taken := r.byUsername[key]; taken && owner != clone.ID {
		return nil, ports.ErrUsernameTaken
	}
	if clone.Email != "" {
		for id, other := range r.users {
			if id != clone.ID && strings.EqualFold(other.Email, clone.Email) {
				return nil, ports.ErrEmailTaken
			}
		}
	}
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if existing, ok := r.users[clone.ID]; ok {
		delete(r.byUsername, normalize(existing.Username))
	} else {
		return nil, ports.ErrNotFound
	}
	r.users[clone.ID] = clone
	r.byUsername[key] = clone.ID
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return user.Clone(), nil
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[normalize(username)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.users[id].Clone(), nil
}

// ListByIDs returns the users that exist among ids; unknown ids are skipped.
func (r *Repository) ListByIDs(_ context.Context, ids []int64) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.User, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if user, ok := r.users[id]; ok {
			out = append(out, user.Clone())
		}
	}
	return out, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes an account. Orders referencing it are not tracked here.
func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ports.ErrNotFound
	}
	delete(r.byUsername, normalize(user.Username))
	delete(r.users, id)
	return nil
}
