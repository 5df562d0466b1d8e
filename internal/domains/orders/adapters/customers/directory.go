// Package customers resolves order contact fields from the users bounded context.
package customers

import (
	"context"

	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
	"github.com/computerstore/storefront-api/internal/domains/orders/ports"
	userdomain "github.com/computerstore/storefront-api/internal/domains/users/domain"
)

// UserLister is the part of the users repository the directory reads.
type UserLister interface {
	ListByIDs(ctx context.Context, ids []int64) ([]*userdomain.User, error)
}

// Directory implements ports.CustomerDirectory over the user store.
type Directory struct {
	users UserLister
}

func NewDirectory(users UserLister) *Directory {
	return &Directory{users: users}
}

func (d *Directory) Customers(ctx context.Context, userIDs []int64) (map[int64]domain.Customer, error) {
	users, err := d.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]domain.Customer, len(users))
	for _, u := range users {
		out[u.ID] = domain.Customer{
			UserID:   u.ID,
			Username: u.Username,
			Email:    u.Email,
			FullName: u.FullName,
			Phone:    u.Phone,
		}
	}
	return out, nil
}

var _ ports.CustomerDirectory = (*Directory)(nil)
