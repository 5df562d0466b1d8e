package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInsufficientStock is returned by DecrementStock when the row holds fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductSnapshot is the catalog state read under lock at checkout.
type ProductSnapshot struct {
	ID    int64
	Name  string
	Image string
	Price decimal.Decimal
	Stock int
}

// Inventory is the slice of the catalog the order workflow writes to.
type Inventory interface {
	// LockProducts locks the rows for ids in ascending order and returns the ones that exist.
	LockProducts(ctx context.Context, ids []int64) (map[int64]ProductSnapshot, error)
	// DecrementStock subtracts qty only when enough stock remains.
	DecrementStock(ctx context.Context, productID int64, qty int) error
	// IncrementStock adds qty back; products that no longer exist are skipped.
	IncrementStock(ctx context.Context, productID int64, qty int) error
}

// CartCleaner empties a user's cart as part of checkout.
type CartCleaner interface {
	DeleteAllForUser(ctx context.Context, userID int64) error
}
