package ports

import (
	"context"

	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
)

// CustomerDirectory resolves contact details for admin order listings.
type CustomerDirectory interface {
	Customers(ctx context.Context, userIDs []int64) (map[int64]domain.Customer, error)
}
