package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidProductID = errors.New("product id must be greater than zero")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidUserID    = errors.New("user id must be greater than zero")
)

// Item is one product staged in a user's cart. A user holds at most one
// item per product.
type Item struct {
	UserID    int64
	ProductID int64
	Quantity  int
	AddedAt   time.Time
}

// NewItem validates and constructs a cart item.
func NewItem(userID, productID int64, quantity int) (*Item, error) {
	item := &Item{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Add increases the quantity by n.
func (i *Item) Add(n int) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}
	i.Quantity += n
	return nil
}

// Validate enforces item invariants.
func (i *Item) Validate() error {
	if i.UserID <= 0 {
		return ErrInvalidUserID
	}
	if i.ProductID <= 0 {
		return ErrInvalidProductID
	}
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
