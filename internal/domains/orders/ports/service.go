package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

// PlaceOrderInput is the checkout request.
type PlaceOrderInput struct {
	TotalAmount     decimal.Decimal
	ShippingAddress string
	PaymentMethod   string
	Phone           string
	FullName        string
	Notes           string
	Items           []domain.Item
}

// Service exposes order use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, caller auth.Identity, input PlaceOrderInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, caller auth.Identity, orderID int64, status string) (*domain.Order, error)
	GetOrder(ctx context.Context, caller auth.Identity, orderID int64) (*domain.Order, error)
	ListMine(ctx context.Context, caller auth.Identity) ([]*domain.Order, error)
	ListAll(ctx context.Context, caller auth.Identity) ([]*domain.Order, error)
	DeleteOrder(ctx context.Context, caller auth.Identity, orderID int64) error

	GetPayment(ctx context.Context, caller auth.Identity, paymentID int64) (*domain.Payment, error)
	ListPayments(ctx context.Context, caller auth.Identity) ([]*domain.Payment, error)
	UpdatePaymentStatus(ctx context.Context, caller auth.Identity, paymentID int64, status string) (*domain.Payment, error)
}
