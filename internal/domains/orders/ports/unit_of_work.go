package ports

import "context"

// Stores are the transaction-scoped adapters handed to a unit of work callback.
type Stores struct {
	Orders    Repository
	Inventory Inventory
	Carts     CartCleaner
}

// UnitOfWork runs fn atomically. A non-nil error from fn rolls back every write made through tx.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}
