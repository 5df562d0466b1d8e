package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	catalogports "github.com/computerstore/storefront-api/internal/domains/catalog/ports"
	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
	"github.com/computerstore/storefront-api/internal/domains/orders/ports"
)

// ProductStore is the in-memory catalog the unit of work reads and adjusts.
type ProductStore interface {
	GetByID(ctx context.Context, id int64) (*catalogports.ProductProjection, error)
	AdjustStock(ctx context.Context, id int64, delta int) error
}

// CartStore is the in-memory cart the unit of work empties.
type CartStore interface {
	DeleteAllForUser(ctx context.Context, userID int64) error
}

// UnitOfWork serialises order writes behind one mutex and stages them until
// the callback succeeds, so a failed callback leaves nothing behind.
type UnitOfWork struct {
	mu       sync.Mutex
	orders   *Repository
	products ProductStore
	carts    CartStore
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(orders *Repository, products ProductStore, carts CartStore) *UnitOfWork {
	return &UnitOfWork{orders: orders, products: products, carts: carts}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Stores) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	tx := &memoryTx{
		uow:     u,
		upserts: map[int64]*domain.Order{},
		deletes: map[int64]struct{}{},
		deltas:  map[int64]int{},
	}
	stores := ports.Stores{
		Orders:    txOrders{tx},
		Inventory: txInventory{tx},
		Carts:     txCarts{tx},
	}
	if err := fn(ctx, stores); err != nil {
		return err
	}
	return tx.commit(ctx)
}

type memoryTx struct {
	uow       *UnitOfWork
	upserts   map[int64]*domain.Order
	deletes   map[int64]struct{}
	deltas    map[int64]int
	cartUsers []int64
}

func (tx *memoryTx) commit(ctx context.Context) error {
	ids := make([]int64, 0, len(tx.deltas))
	for id, delta := range tx.deltas {
		if delta != 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	applied := make([]int64, 0, len(ids))
	revert := func() {
		for _, done := range applied {
			_ = tx.uow.products.AdjustStock(ctx, done, -tx.deltas[done])
		}
	}
	for _, id := range ids {
		if err := tx.uow.products.AdjustStock(ctx, id, tx.deltas[id]); err != nil {
			revert()
			return fmt.Errorf("adjust stock of product %d: %w", id, err)
		}
		applied = append(applied, id)
	}
	for _, userID := range tx.cartUsers {
		if err := tx.uow.carts.DeleteAllForUser(ctx, userID); err != nil {
			revert()
			return fmt.Errorf("clear cart of user %d: %w", userID, err)
		}
	}
	tx.uow.orders.apply(tx.upserts, tx.deletes)
	return nil
}

// load reads an order through the staged writes of this transaction.
func (tx *memoryTx) load(ctx context.Context, id int64) (*domain.Order, error) {
	if _, gone := tx.deletes[id]; gone {
		return nil, ports.ErrNotFound
	}
	if staged, ok := tx.upserts[id]; ok {
		return staged.Clone(), nil
	}
	return tx.uow.orders.GetByID(ctx, id)
}

// stock is the product stock as seen by this transaction.
func (tx *memoryTx) stock(ctx context.Context, id int64) (*catalogports.ProductProjection, int, error) {
	p, err := tx.uow.products.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return p, p.Entity.Stock + tx.deltas[id], nil
}

type txOrders struct{ tx *memoryTx }

func (o txOrders) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	staged := o.tx.uow.orders.prepare(order)
	o.tx.upserts[staged.ID] = staged
	return staged.Clone(), nil
}

func (o txOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return o.tx.load(ctx, id)
}

func (o txOrders) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return o.tx.load(ctx, id)
}

// ListByUser and ListAll see committed state only.
func (o txOrders) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return o.tx.uow.orders.ListByUser(ctx, userID)
}

func (o txOrders) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return o.tx.uow.orders.ListAll(ctx)
}

func (o txOrders) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Order, error) {
	order, err := o.tx.load(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = status
	order.UpdatedAt = o.tx.uow.orders.now().UTC()
	o.tx.upserts[id] = order
	return order.Clone(), nil
}

func (o txOrders) Delete(ctx context.Context, id int64) error {
	if _, err := o.tx.load(ctx, id); err != nil {
		return err
	}
	delete(o.tx.upserts, id)
	o.tx.deletes[id] = struct{}{}
	return nil
}

// GetPayment sees staged orders first so a payment created in this
// transaction can be updated before commit.
func (o txOrders) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	order, err := o.orderOfPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	return order.Payment.Clone(), nil
}

func (o txOrders) GetPaymentForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	return o.GetPayment(ctx, id)
}

func (o txOrders) ListPayments(ctx context.Context) ([]*domain.Payment, error) {
	return o.tx.uow.orders.ListPayments(ctx)
}

func (o txOrders) UpdatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment == nil {
		return nil, errors.New("payment is nil")
	}
	order, err := o.orderOfPayment(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	order.Payment = withPaymentState(order.Payment, payment, o.tx.uow.orders.now().UTC())
	o.tx.upserts[order.ID] = order
	return order.Payment.Clone(), nil
}

func (o txOrders) orderOfPayment(ctx context.Context, paymentID int64) (*domain.Order, error) {
	for id, staged := range o.tx.upserts {
		if staged.Payment != nil && staged.Payment.ID == paymentID {
			return o.tx.load(ctx, id)
		}
	}
	committed, err := o.tx.uow.orders.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	order, err := o.tx.load(ctx, committed.OrderID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ports.ErrPaymentNotFound
	}
	return order, err
}

type txInventory struct{ tx *memoryTx }

func (i txInventory) LockProducts(ctx context.Context, ids []int64) (map[int64]ports.ProductSnapshot, error) {
	out := make(map[int64]ports.ProductSnapshot, len(ids))
	for _, id := range ids {
		p, stock, err := i.tx.stock(ctx, id)
		if errors.Is(err, catalogports.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = ports.ProductSnapshot{
			ID:    id,
			Name:  p.Entity.Name,
			Image: p.Entity.PrimaryImage(),
			Price: p.Entity.Price,
			Stock: stock,
		}
	}
	return out, nil
}

func (i txInventory) DecrementStock(ctx context.Context, productID int64, qty int) error {
	_, stock, err := i.tx.stock(ctx, productID)
	if errors.Is(err, catalogports.ErrNotFound) {
		return ports.ErrInsufficientStock
	}
	if err != nil {
		return err
	}
	if stock < qty {
		return ports.ErrInsufficientStock
	}
	i.tx.deltas[productID] -= qty
	return nil
}

func (i txInventory) IncrementStock(ctx context.Context, productID int64, qty int) error {
	_, _, err := i.tx.stock(ctx, productID)
	if errors.Is(err, catalogports.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	i.tx.deltas[productID] += qty
	return nil
}

type txCarts struct{ tx *memoryTx }

func (c txCarts) DeleteAllForUser(_ context.Context, userID int64) error {
	c.tx.cartUsers = append(c.tx.cartUsers, userID)
	return nil
}
