package ports

import (
	"context"
	"errors"

	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

// Repository persists order headers together with their lines.
type Repository interface {
	// Create inserts the header and lines and returns the order with ids and timestamps set.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// GetForUpdate is GetByID that also locks the header row for the current transaction.
	GetForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	// ListAll returns every order, newest first.
	ListAll(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Order, error)
	// Delete removes the lines, the payment and then the header.
	Delete(ctx context.Context, id int64) error

	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
	// GetPaymentForUpdate is GetPayment that also locks the payment row.
	GetPaymentForUpdate(ctx context.Context, id int64) (*domain.Payment, error)
	// ListPayments returns every payment, newest first.
	ListPayments(ctx context.Context) ([]*domain.Payment, error)
	// UpdatePayment writes the status and paid-at time of an existing payment.
	UpdatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
}
