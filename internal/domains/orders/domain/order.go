package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart            = errors.New("order must contain at least one item")
	ErrInvalidProductID     = errors.New("product id must be greater than zero")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrMissingPhone         = errors.New("contact phone is required")
	ErrInvalidPaymentMethod = errors.New("payment method is invalid")
	ErrNegativePrice        = errors.New("unit price must not be negative")
)

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "COD"
	PaymentCreditCard   PaymentMethod = "CreditCard"
	PaymentBankTransfer PaymentMethod = "BankTransfer"
)

// ParsePaymentMethod defaults an empty value to cash on delivery.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch method := PaymentMethod(strings.TrimSpace(raw)); method {
	case "":
		return PaymentCOD, nil
	case PaymentCOD, PaymentCreditCard, PaymentBankTransfer:
		return method, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// Line is one product entry of an order. Name, image and price are copied at
// purchase time and never follow later catalog edits.
type Line struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	ProductName  string
	ProductImage string
	Quantity     int
	UnitPrice    decimal.Decimal
}

// Subtotal is quantity times unit price.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Customer carries the contact fields of the ordering account.
type Customer struct {
	UserID   int64
	Username string
	Email    string
	FullName string
	Phone    string
}

// Order is the checkout aggregate: a header plus its lines.
type Order struct {
	ID              int64
	UserID          int64
	TotalAmount     decimal.Decimal
	ShippingAddress string
	PaymentMethod   PaymentMethod
	Status          Status
	FullName        string
	Phone           string
	Notes           string
	Lines           []Line
	Payment         *Payment
	Customer        *Customer
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Details are the header fields supplied at checkout.
type Details struct {
	ShippingAddress string
	PaymentMethod   string
	FullName        string
	Phone           string
	Notes           string
}

// Validate checks the header fields without building an order.
func (d Details) Validate() error {
	if _, err := ParsePaymentMethod(d.PaymentMethod); err != nil {
		return err
	}
	if strings.TrimSpace(d.Phone) == "" {
		return ErrMissingPhone
	}
	return nil
}

// NewOrder builds a pending order from priced lines and computes its total.
func NewOrder(userID int64, details Details, lines []Line) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	method, _ := ParsePaymentMethod(details.PaymentMethod)
	order := &Order{
		UserID:          userID,
		ShippingAddress: strings.TrimSpace(details.ShippingAddress),
		PaymentMethod:   method,
		Status:          StatusPending,
		FullName:        strings.TrimSpace(details.FullName),
		Phone:           strings.TrimSpace(details.Phone),
		Notes:           strings.TrimSpace(details.Notes),
		Lines:           make([]Line, len(lines)),
	}
	copy(order.Lines, lines)
	for _, l := range order.Lines {
		if l.ProductID <= 0 {
			return nil, ErrInvalidProductID
		}
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if l.UnitPrice.IsNegative() {
			return nil, ErrNegativePrice
		}
	}
	order.TotalAmount = order.ComputeTotal()
	order.Payment = NewPayment(method, order.TotalAmount)
	return order, nil
}

// ComputeTotal sums the line subtotals rounded to cents.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

// Reconciles reports whether the stored total equals the sum of its lines.
func (o *Order) Reconciles() bool {
	return o.TotalAmount.Equal(o.ComputeTotal())
}

// ItemCount is the number of units across all lines.
func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// TransitionTo moves the order to next if the status table allows it.
func (o *Order) TransitionTo(next Status) error {
	if err := o.Status.CheckTransition(next); err != nil {
		return err
	}
	o.Status = next
	return nil
}

// Clone deep-copies the order so callers cannot mutate stored state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Lines = append([]Line(nil), o.Lines...)
	c.Payment = o.Payment.Clone()
	if o.Customer != nil {
		customer := *o.Customer
		c.Customer = &customer
	}
	return &c
}
