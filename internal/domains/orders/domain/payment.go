package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks whether the money for an order has arrived.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

var (
	ErrInvalidPaymentStatus     = errors.New("payment status is invalid")
	ErrInvalidPaymentTransition = errors.New("payment status transition not allowed")
)

// A failed payment may be retried; a completed one is final.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentFailed:    {PaymentPending, PaymentCompleted},
	PaymentCompleted: nil,
}

// ParsePaymentStatus accepts only the exact canonical names.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	status := PaymentStatus(raw)
	if _, ok := paymentTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, raw)
	}
	return status, nil
}

// Payment is the settlement record opened for every order at checkout.
type Payment struct {
	ID        int64
	OrderID   int64
	Method    PaymentMethod
	Status    PaymentStatus
	Amount    decimal.Decimal
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPayment opens a pending payment for the order total.
func NewPayment(method PaymentMethod, amount decimal.Decimal) *Payment {
	return &Payment{Method: method, Status: PaymentPending, Amount: amount}
}

// TransitionTo moves the payment to next and stamps PaidAt on completion.
func (p *Payment) TransitionTo(next PaymentStatus, now time.Time) error {
	if _, ok := paymentTransitions[next]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, next)
	}
	allowed := false
	for _, candidate := range paymentTransitions[p.Status] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, p.Status, next)
	}
	p.Status = next
	if next == PaymentCompleted {
		paid := now.UTC()
		p.PaidAt = &paid
	} else {
		p.PaidAt = nil
	}
	return nil
}

// Clone returns a deep copy.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	if p.PaidAt != nil {
		paid := *p.PaidAt
		c.PaidAt = &paid
	}
	return &c
}
