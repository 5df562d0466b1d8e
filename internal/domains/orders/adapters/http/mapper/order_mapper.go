package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	orderdomain "github.com/computerstore/storefront-api/internal/domains/orders/domain"
	orderports "github.com/computerstore/storefront-api/internal/domains/orders/ports"
)

// PlaceOrderRequest is the body of POST /orders. TotalAmount and item prices
// are the client's quote; the server prices lines from the catalog.
type PlaceOrderRequest struct {
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	ShippingAddress string           `json:"shippingAddress" binding:"max=255"`
	PaymentMethod   string           `json:"paymentMethod" binding:"omitempty,oneof=COD CreditCard BankTransfer"`
	Phone           string           `json:"phone" binding:"max=32"`
	FullName        string           `json:"fullName" binding:"max=255"`
	Notes           string           `json:"notes" binding:"max=2000"`
	Items           []PlaceOrderItem `json:"items" binding:"required,min=1,dive"`
}

// PlaceOrderItem is one requested product.
type PlaceOrderItem struct {
	ProductID int64           `json:"productId" binding:"required,gt=0"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

// UpdateStatusRequest is the body of PUT /orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePaymentRequest is the body of PUT /payments/:id/status.
type UpdatePaymentRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Completed Failed"`
}

// Line is the JSON shape of an order line with its product snapshot.
type Line struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId,omitempty"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// Customer carries the denormalized contact fields shown to admins.
type Customer struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Order is the JSON shape of an order header with its lines.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          string          `json:"status"`
	FullName        string          `json:"fullName"`
	Phone           string          `json:"phone,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Items           []Line          `json:"items"`
	Payment         *Payment        `json:"payment,omitempty"`
	Customer        *Customer       `json:"customer,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Payment is the JSON shape of an order's payment record.
type Payment struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	Method    string          `json:"paymentMethod"`
	Status    string          `json:"paymentStatus"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    *time.Time      `json:"paidAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ToPlaceOrderInput converts the request body into the service input.
func ToPlaceOrderInput(req PlaceOrderRequest) orderports.PlaceOrderInput {
	items := make([]orderdomain.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orderdomain.Item{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return orderports.PlaceOrderInput{
		TotalAmount:     req.TotalAmount,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Phone:           req.Phone,
		FullName:        req.FullName,
		Notes:           req.Notes,
		Items:           items,
	}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *orderdomain.Order) Order {
	if order == nil {
		return Order{Items: []Line{}}
	}
	lines := make([]Line, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, Line{
			ID:           l.ID,
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			ProductImage: l.ProductImage,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Subtotal:     l.Subtotal(),
		})
	}
	out := Order{
		ID:              order.ID,
		UserID:          order.UserID,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   string(order.PaymentMethod),
		Status:          string(order.Status),
		FullName:        order.FullName,
		Phone:           order.Phone,
		Notes:           order.Notes,
		Items:           lines,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.Payment != nil {
		payment := FromDomainPayment(order.Payment)
		out.Payment = &payment
	}
	if c := order.Customer; c != nil {
		out.Customer = &Customer{
			ID:       c.UserID,
			Username: c.Username,
			Email:    c.Email,
			FullName: c.FullName,
			Phone:    c.Phone,
		}
	}
	return out
}

// FromDomainOrders converts a list of domain orders.
func FromDomainOrders(orders []*orderdomain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, FromDomainOrder(o))
	}
	return result
}

// FromDomainPayment converts a domain payment.
func FromDomainPayment(p *orderdomain.Payment) Payment {
	if p == nil {
		return Payment{}
	}
	return Payment{
		ID:        p.ID,
		OrderID:   p.OrderID,
		Method:    string(p.Method),
		Status:    string(p.Status),
		Amount:    p.Amount,
		PaidAt:    p.PaidAt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// FromDomainPayments converts a list of domain payments.
func FromDomainPayments(payments []*orderdomain.Payment) []Payment {
	result := make([]Payment, 0, len(payments))
	for _, p := range payments {
		result = append(result, FromDomainPayment(p))
	}
	return result
}
