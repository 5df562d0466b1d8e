package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
	"github.com/computerstore/storefront-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu          sync.RWMutex
	orders      map[int64]*domain.Order
	nextOrderID int64
	nextLineID  int64
	nextPayID   int64
	now         func() time.Time
}

func NewRepository() *Repository {
	return &Repository{orders: map[int64]*domain.Order{}, now: time.Now}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := r.prepare(order)
	r.mu.Lock()
	r.orders[clone.ID] = clone
	r.mu.Unlock()
	return clone.Clone(), nil
}

// prepare assigns ids and timestamps to a copy of order.
func (r *Repository) prepare(order *domain.Order) *domain.Order {
	clone := order.Clone()
	now := r.now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextOrderID++
	clone.ID = r.nextOrderID
	for i := range clone.Lines {
		r.nextLineID++
		clone.Lines[i].ID = r.nextLineID
		clone.Lines[i].OrderID = clone.ID
	}
	if clone.Payment != nil {
		r.nextPayID++
		clone.Payment.ID = r.nextPayID
		clone.Payment.OrderID = clone.ID
		clone.Payment.CreatedAt = now
		clone.Payment.UpdatedAt = now
	}
	clone.Customer = nil
	clone.CreatedAt = now
	clone.UpdatedAt = now
	return clone
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

// GetForUpdate is GetByID; writers are serialised by the unit of work.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *Repository) ListByUser(_ context.Context, userID int64) ([]*domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (r *Repository) ListAll(_ context.Context) ([]*domain.Order, error) {
	return r.list(func(*domain.Order) bool { return true }), nil
}

func (r *Repository) UpdateStatus(_ context.Context, id int64, status domain.Status) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = r.now().UTC()
	return order.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *Repository) GetPayment(_ context.Context, id int64) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if order := r.orderOfPayment(id); order != nil {
		return order.Payment.Clone(), nil
	}
	return nil, ports.ErrPaymentNotFound
}

// GetPaymentForUpdate is GetPayment; writers are serialised by the unit of work.
func (r *Repository) GetPaymentForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.GetPayment(ctx, id)
}

func (r *Repository) ListPayments(_ context.Context) ([]*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Payment, 0, len(r.orders))
	for _, order := range r.orders {
		if order.Payment != nil {
			out = append(out, order.Payment.Clone())
		}
	}
	sortPaymentsNewestFirst(out)
	return out, nil
}

func (r *Repository) UpdatePayment(_ context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment == nil {
		return nil, errors.New("payment is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	order := r.orderOfPayment(payment.ID)
	if order == nil {
		return nil, ports.ErrPaymentNotFound
	}
	order.Payment = withPaymentState(order.Payment, payment, r.now().UTC())
	return order.Payment.Clone(), nil
}

// orderOfPayment must be called with r.mu held.
func (r *Repository) orderOfPayment(paymentID int64) *domain.Order {
	for _, order := range r.orders {
		if order.Payment != nil && order.Payment.ID == paymentID {
			return order
		}
	}
	return nil
}

// withPaymentState copies the mutable payment fields onto a copy of stored.
func withPaymentState(stored, update *domain.Payment, now time.Time) *domain.Payment {
	next := stored.Clone()
	next.Status = update.Status
	next.PaidAt = update.Clone().PaidAt
	next.UpdatedAt = now
	return next
}

func (r *Repository) list(keep func(*domain.Order) bool) []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			out = append(out, order.Clone())
		}
	}
	sortNewestFirst(out)
	return out
}

// apply writes the staged state of a committed unit of work.
func (r *Repository) apply(upserts map[int64]*domain.Order, deletes map[int64]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, order := range upserts {
		r.orders[id] = order
	}
	for id := range deletes {
		delete(r.orders, id)
	}
}

func sortNewestFirst(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

func sortPaymentsNewestFirst(payments []*domain.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].CreatedAt.After(payments[j].CreatedAt)
		}
		return payments[i].ID > payments[j].ID
	})
}
