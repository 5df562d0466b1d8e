package domain

import "fmt"

// InsufficientStockError reports a product that cannot cover the requested quantity.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %q only has %d left in stock", e.ProductName, e.Available)
}

// ProductNotFoundError reports an order item whose product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}
