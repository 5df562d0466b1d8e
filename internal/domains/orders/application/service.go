package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
	"github.com/computerstore/storefront-api/internal/domains/orders/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

// Service orchestrates order use cases.
type Service struct {
	orders          ports.Repository
	uow             ports.UnitOfWork
	customers       ports.CustomerDirectory
	events          ports.EventPublisher
	restockOnCancel bool
	now             func() time.Time
	logger          *slog.Logger
}

type Option func(*Service)

// WithCustomerDirectory enables contact enrichment of admin listings.
func WithCustomerDirectory(dir ports.CustomerDirectory) Option {
	return func(s *Service) { s.customers = dir }
}

func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithCancelRestock returns line quantities to stock when an order is cancelled.
func WithCancelRestock(enabled bool) Option {
	return func(s *Service) { s.restockOnCancel = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for post-commit failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the read repository and the unit of work used for writes.
func NewService(orders ports.Repository, uow ports.UnitOfWork, opts ...Option) *Service {
	s := &Service{
		orders: orders,
		uow:    uow,
		events: ports.NoopEventPublisher,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder checks stock, writes the order and its lines, decrements stock,
// and clears the caller's cart in one transaction. Lines are priced from the
// catalog; client quotes that disagree are only logged.
func (s *Service) PlaceOrder(ctx context.Context, caller auth.Identity, input ports.PlaceOrderInput) (*domain.Order, error) {
	if err := auth.RequireUser(caller); err != nil {
		return nil, err
	}
	items, err := domain.AggregateItems(input.Items)
	if err != nil {
		return nil, mapError(err)
	}
	details := domain.Details{
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		FullName:        input.FullName,
		Phone:           input.Phone,
		Notes:           input.Notes,
	}
	if details.FullName == "" {
		details.FullName = caller.Username
	}
	if strings.TrimSpace(details.Phone) == "" {
		phone, err := s.profilePhone(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		details.Phone = phone
	}
	if err := details.Validate(); err != nil {
		return nil, mapError(err)
	}

	var placed *domain.Order
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx ports.Stores) error {
		products, err := tx.Inventory.LockProducts(ctx, domain.ProductIDs(items))
		if err != nil {
			return err
		}
		lines := make([]domain.Line, 0, len(items))
		for _, it := range items {
			p, ok := products[it.ProductID]
			if !ok {
				return &domain.ProductNotFoundError{ProductID: it.ProductID}
			}
			if p.Stock < it.Quantity {
				return insufficient(p, it.Quantity)
			}
			if !it.Price.IsZero() && !it.Price.Equal(p.Price) {
				s.logger.LogAttrs(ctx, slog.LevelInfo, "client price quote differs from catalog",
					slog.Int64("product.id", p.ID),
					slog.String("quoted", it.Price.String()),
					slog.String("catalog", p.Price.String()))
			}
			lines = append(lines, domain.Line{
				ProductID:    p.ID,
				ProductName:  p.Name,
				ProductImage: p.Image,
				Quantity:     it.Quantity,
				UnitPrice:    p.Price,
			})
		}

		order, err := domain.NewOrder(caller.UserID, details, lines)
		if err != nil {
			return err
		}
		if !input.TotalAmount.IsZero() && !input.TotalAmount.Equal(order.TotalAmount) {
			s.logger.LogAttrs(ctx, slog.LevelInfo, "client total differs from computed total",
				slog.Int64("user.id", caller.UserID),
				slog.String("submitted", input.TotalAmount.String()),
				slog.String("computed", order.TotalAmount.String()))
		}

		created, err := tx.Orders.Create(ctx, order)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := tx.Inventory.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				if errors.Is(err, ports.ErrInsufficientStock) {
					return insufficient(products[it.ProductID], it.Quantity)
				}
				return err
			}
		}
		if err := tx.Carts.DeleteAllForUser(ctx, caller.UserID); err != nil {
			return err
		}
		placed = created
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.publish(ctx, s.event(domain.EventOrderPlaced, placed, ""))
	return placed, nil
}

// UpdateStatus applies an allowed status transition. Admin only.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, orderID int64, status string) (*domain.Order, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, mapError(err)
	}

	var (
		updated  *domain.Order
		previous domain.Status
	)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx ports.Stores) error {
		order, err := tx.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		previous = order.Status
		if err := order.TransitionTo(next); err != nil {
			return err
		}
		if next == domain.StatusCancelled && s.restockOnCancel {
			for _, l := range order.Lines {
				if l.ProductID == 0 {
					continue
				}
				if err := tx.Inventory.IncrementStock(ctx, l.ProductID, l.Quantity); err != nil {
					return err
				}
			}
		}
		updated, err = tx.Orders.UpdateStatus(ctx, orderID, next)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.publish(ctx, s.event(domain.EventOrderStatusChanged, updated, previous))
	return updated, nil
}

// GetOrder returns an order to its owner or an admin.
func (s *Service) GetOrder(ctx context.Context, caller auth.Identity, orderID int64) (*domain.Order, error) {
	if err := auth.RequireUser(caller); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, fmt.Errorf("%w: order %d belongs to another user", auth.ErrForbidden, orderID)
	}
	return order, nil
}

func (s *Service) ListMine(ctx context.Context, caller auth.Identity) ([]*domain.Order, error) {
	if err := auth.RequireUser(caller); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, caller.UserID)
}

// ListAll returns every order with customer contact fields. Admin only.
func (s *Service) ListAll(ctx context.Context, caller auth.Identity) ([]*domain.Order, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if s.customers == nil || len(orders) == 0 {
		return orders, nil
	}
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.UserID)
	}
	customers, err := s.customers.Customers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve customers: %w", err)
	}
	for _, o := range orders {
		if c, ok := customers[o.UserID]; ok {
			o.Customer = &c
		}
	}
	return orders, nil
}

// DeleteOrder removes an order and its lines. Admin only; stock is not returned.
func (s *Service) DeleteOrder(ctx context.Context, caller auth.Identity, orderID int64) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}
	var deleted *domain.Order
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx ports.Stores) error {
		order, err := tx.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := tx.Orders.Delete(ctx, orderID); err != nil {
			return err
		}
		deleted = order
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, s.event(domain.EventOrderDeleted, deleted, ""))
	return nil
}

// GetPayment returns a payment to the owner of its order or an admin.
func (s *Service) GetPayment(ctx context.Context, caller auth.Identity, paymentID int64) (*domain.Payment, error) {
	if err := auth.RequireUser(caller); err != nil {
		return nil, err
	}
	payment, err := s.orders.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		return payment, nil
	}
	order, err := s.orders.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, fmt.Errorf("%w: payment %d belongs to another user", auth.ErrForbidden, paymentID)
	}
	return payment, nil
}

func (s *Service) ListPayments(ctx context.Context, caller auth.Identity) ([]*domain.Payment, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.orders.ListPayments(ctx)
}

// UpdatePaymentStatus records a settlement outcome. Admin only.
func (s *Service) UpdatePaymentStatus(ctx context.Context, caller auth.Identity, paymentID int64, status string) (*domain.Payment, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	next, err := domain.ParsePaymentStatus(status)
	if err != nil {
		return nil, mapError(err)
	}
	var updated *domain.Payment
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx ports.Stores) error {
		payment, err := tx.Orders.GetPaymentForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := payment.TransitionTo(next, s.now()); err != nil {
			return err
		}
		updated, err = tx.Orders.UpdatePayment(ctx, payment)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

func (s *Service) event(kind domain.EventType, order *domain.Order, previous domain.Status) domain.Event {
	return domain.Event{
		ID:             uuid.NewString(),
		Type:           kind,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalAmount:    order.TotalAmount,
		ItemCount:      order.ItemCount(),
		OccurredAt:     s.now().UTC(),
	}
}

// publish runs after commit; delivery failures never undo the change.
func (s *Service) publish(ctx context.Context, evt domain.Event) {
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order event not published",
			slog.String("event.type", string(evt.Type)),
			slog.Int64("order.id", evt.OrderID),
			slog.String("error", err.Error()))
	}
}

// profilePhone falls back to the phone stored on the caller's account.
func (s *Service) profilePhone(ctx context.Context, userID int64) (string, error) {
	if s.customers == nil {
		return "", nil
	}
	found, err := s.customers.Customers(ctx, []int64{userID})
	if err != nil {
		return "", fmt.Errorf("resolve customer %d: %w", userID, err)
	}
	return found[userID].Phone, nil
}

func insufficient(p ports.ProductSnapshot, requested int) error {
	return &domain.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Available:   p.Stock,
		Requested:   requested,
	}
}

var _ ports.Service = (*Service)(nil)
