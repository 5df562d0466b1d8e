package application

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	cartmemory "github.com/computerstore/storefront-api/internal/domains/cart/adapters/memory"
	cartdomain "github.com/computerstore/storefront-api/internal/domains/cart/domain"
	catalogmemory "github.com/computerstore/storefront-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/computerstore/storefront-api/internal/domains/catalog/domain"
	ordermemory "github.com/computerstore/storefront-api/internal/domains/orders/adapters/memory"
	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
	"github.com/computerstore/storefront-api/internal/domains/orders/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

var (
	alice = auth.Identity{UserID: 10, Username: "alice", Role: auth.RoleCustomer}
	bob   = auth.Identity{UserID: 11, Username: "bob", Role: auth.RoleCustomer}
	admin = auth.Identity{UserID: 1, Username: "admin", Role: auth.RoleAdmin}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeDirectory map[int64]domain.Customer

func (f fakeDirectory) Customers(_ context.Context, ids []int64) (map[int64]domain.Customer, error) {
	out := map[int64]domain.Customer{}
	for _, id := range ids {
		if c, ok := f[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type failingCarts struct{}

func (failingCarts) DeleteAllForUser(context.Context, int64) error { return errors.New("cart store down") }

type fixture struct {
	svc      *Service
	products *catalogmemory.Repository
	carts    *cartmemory.Repository
	orders   *ordermemory.Repository
	events   *recordingPublisher
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		products: catalogmemory.NewRepository(),
		carts:    cartmemory.NewRepository(),
		orders:   ordermemory.NewRepository(),
		events:   &recordingPublisher{},
	}
	uow := ordermemory.NewUnitOfWork(f.orders, f.products, f.carts)
	opts = append([]Option{WithEventPublisher(f.events)}, opts...)
	f.svc = NewService(f.orders, uow, opts...)
	return f
}

func (f *fixture) product(t *testing.T, name, price string, stock int) int64 {
	t.Helper()
	p, err := catalogdomain.NewProduct(0, name, "", decimal.RequireFromString(price), stock, []string{name + ".png"})
	require.NoError(t, err)
	saved, err := f.products.Save(context.Background(), p)
	require.NoError(t, err)
	return saved.Entity.ID
}

func (f *fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Entity.Stock
}

func (f *fixture) addToCart(t *testing.T, userID, productID int64, qty int) {
	t.Helper()
	item, err := cartdomain.NewItem(userID, productID, qty)
	require.NoError(t, err)
	_, err = f.carts.Save(context.Background(), item)
	require.NoError(t, err)
}

func input(items ...domain.Item) ports.PlaceOrderInput {
	return ports.PlaceOrderInput{ShippingAddress: "1 Main St", Phone: "0900", Items: items}
}

func TestPlaceOrder_InsufficientStockLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gpu := f.product(t, "GPU-X", "500.00", 2)
	f.addToCart(t, alice.UserID, gpu, 3)

	_, err := f.svc.PlaceOrder(ctx, alice, input(domain.Item{ProductID: gpu, Quantity: 3}))

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Contains(t, err.Error(), "GPU-X")
	assert.Contains(t, err.Error(), "2")
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 2, f.stock(t, gpu))

	mine, err := f.svc.ListMine(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, mine)
	cart, err := f.carts.List(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Len(t, cart, 1)
	assert.Empty(t, f.events.types())
}

func TestPlaceOrder_CheckoutFromCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gpu := f.product(t, "GPU-X", "499.99", 5)
	ram := f.product(t, "RAM 32GB", "79.90", 10)
	f.addToCart(t, alice.UserID, gpu, 1)
	f.addToCart(t, alice.UserID, ram, 2)

	order, err := f.svc.PlaceOrder(ctx, alice, ports.PlaceOrderInput{
		TotalAmount:     decimal.RequireFromString("659.79"),
		ShippingAddress: "1 Main St",
		Phone:           "0900",
		Items: []domain.Item{
			{ProductID: gpu, Quantity: 1, Price: decimal.RequireFromString("499.99")},
			{ProductID: ram, Quantity: 2, Price: decimal.RequireFromString("79.90")},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentCOD, order.PaymentMethod)
	assert.Equal(t, "alice", order.FullName)
	assert.True(t, order.Reconciles())
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("659.79")))

	mine, err := f.svc.ListMine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Lines, 2)
	assert.Equal(t, "GPU-X", mine[0].Lines[0].ProductName)
	assert.Equal(t, "GPU-X.png", mine[0].Lines[0].ProductImage)

	cart, err := f.carts.List(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Empty(t, cart)
	assert.Equal(t, 4, f.stock(t, gpu))
	assert.Equal(t, 8, f.stock(t, ram))
	assert.Equal(t, []domain.EventType{domain.EventOrderPlaced}, f.events.types())
}

func TestPlaceOrder_MissingProductRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gpu := f.product(t, "GPU-X", "10.00", 5)

	_, err := f.svc.PlaceOrder(ctx, alice, input(
		domain.Item{ProductID: gpu, Quantity: 1},
		domain.Item{ProductID: 999, Quantity: 1},
	))
	var notFound *domain.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(999), notFound.ProductID)
	assert.Equal(t, 5, f.stock(t, gpu))
}

func TestPlaceOrder_FailureAfterWritesRollsBack(t *testing.T) {
	orders := ordermemory.NewRepository()
	products := catalogmemory.NewRepository()
	svc := NewService(orders, ordermemory.NewUnitOfWork(orders, products, failingCarts{}))
	p, err := catalogdomain.NewProduct(0, "SSD", "", decimal.RequireFromString("50"), 3, nil)
	require.NoError(t, err)
	saved, err := products.Save(context.Background(), p)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), alice, input(domain.Item{ProductID: saved.Entity.ID, Quantity: 2}))
	require.Error(t, err)

	after, err := products.GetByID(context.Background(), saved.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Entity.Stock)
	all, err := orders.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gpu := f.product(t, "GPU-X", "10.00", 5)

	_, err := f.svc.PlaceOrder(ctx, alice, input())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = f.svc.PlaceOrder(ctx, alice, input(domain.Item{ProductID: gpu, Quantity: 0}))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	noPhone := input(domain.Item{ProductID: gpu, Quantity: 1})
	noPhone.Phone = " "
	_, err = f.svc.PlaceOrder(ctx, alice, noPhone)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrMissingPhone)

	_, err = f.svc.PlaceOrder(ctx, auth.Identity{}, input(domain.Item{ProductID: gpu, Quantity: 1}))
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	assert.Equal(t, 5, f.stock(t, gpu))
}

func TestPlaceOrder_CatalogPriceWinsOverClientQuote(t *testing.T) {
	var logs bytes.Buffer
	f := newFixture(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	gpu := f.product(t, "GPU-X", "10.00", 5)

	quoted := input(domain.Item{ProductID: gpu, Quantity: 2, Price: decimal.RequireFromString("1.00")})
	quoted.TotalAmount = decimal.RequireFromString("2.00")
	order, err := f.svc.PlaceOrder(context.Background(), alice, quoted)
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("20.00")), order.TotalAmount.String())
	assert.True(t, order.Reconciles())
	assert.Equal(t, 3, f.stock(t, gpu))
	assert.Contains(t, logs.String(), "client price quote differs from catalog")
	assert.Contains(t, logs.String(), "client total differs from computed total")
}

func TestPlaceOrder_AddressOptionalPhoneFromProfile(t *testing.T) {
	f := newFixture(t, WithCustomerDirectory(fakeDirectory{
		alice.UserID: {UserID: alice.UserID, Username: "alice", Phone: "0911"},
	}))
	gpu := f.product(t, "GPU-X", "10.00", 5)

	order, err := f.svc.PlaceOrder(context.Background(), alice, ports.PlaceOrderInput{
		Items: []domain.Item{{ProductID: gpu, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Empty(t, order.ShippingAddress)
	assert.Equal(t, "0911", order.Phone)

	_, err = f.svc.PlaceOrder(context.Background(), bob, ports.PlaceOrderInput{
		Items: []domain.Item{{ProductID: gpu, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrMissingPhone)
	assert.Equal(t, 4, f.stock(t, gpu))
}

func TestPlaceOrder_DuplicateLinesAreMerged(t *testing.T) {
	f := newFixture(t)
	gpu := f.product(t, "GPU-X", "10.00", 3)

	_, err := f.svc.PlaceOrder(context.Background(), alice, input(
		domain.Item{ProductID: gpu, Quantity: 2},
		domain.Item{ProductID: gpu, Quantity: 2},
	))
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Requested)

	order, err := f.svc.PlaceOrder(context.Background(), alice, input(
		domain.Item{ProductID: gpu, Quantity: 1},
		domain.Item{ProductID: gpu, Quantity: 2},
	))
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 3, order.Lines[0].Quantity)
	assert.Equal(t, 0, f.stock(t, gpu))
}

func TestPlaceOrder_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newFixture(t)
	gpu := f.product(t, "GPU-X", "10.00", 5)

	var (
		g         errgroup.Group
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 20; i++ {
		caller := auth.Identity{UserID: int64(100 + i), Username: "buyer", Role: auth.RoleCustomer}
		g.Go(func() error {
			_, err := f.svc.PlaceOrder(context.Background(), caller, input(domain.Item{ProductID: gpu, Quantity: 1}))
			var stockErr *domain.InsufficientStockError
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &stockErr):
				rejected++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 15, rejected)
	assert.Equal(t, 0, f.stock(t, gpu))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gpu := f.product(t, "GPU-X", "10.00", 5)
	order, err := f.svc.PlaceOrder(ctx, alice, input(domain.Item{ProductID: gpu, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, alice, order.ID, "Processing")
	assert.ErrorIs(t, err, auth.ErrForbidden)

	for _, raw := range []string{"Teleported", "processing", "PROCESSING", " Processing ", ""} {
		_, err = f.svc.UpdateStatus(ctx, admin, order.ID, raw)
		assert.ErrorIs(t, err, ErrInvalidInput, "%q", raw)
		assert.ErrorIs(t, err, domain.ErrInvalidStatus, "%q", raw)
	}
	unchanged, err := f.svc.GetOrder(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, unchanged.Status)

	_, err = f.svc.UpdateStatus(ctx, admin, order.ID, "Delivered")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	for _, next := range []string{"Processing", "Shipped", "Delivered"} {
		updated, err := f.svc.UpdateStatus(ctx, admin, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, domain.Status(next), updated.Status)
	}
	_, err = f.svc.UpdateStatus(ctx, admin, order.ID, "Cancelled")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(ctx, admin, 404, "Processing")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	assert.Equal(t, 4, f.stock(t, gpu))
	assert.Contains(t, f.events.types(), domain.EventOrderStatusChanged)
}

func TestUpdateStatus_CancelRestockPolicy(t *testing.T) {
	for _, restock := range []bool{false, true} {
		f := newFixture(t, WithCancelRestock(restock))
		ctx := context.Background()
		gpu := f.product(t, "GPU-X", "10.00", 5)
		order, err := f.svc.PlaceOrder(ctx, alice, input(domain.Item{ProductID: gpu, Quantity: 2}))
		require.NoError(t, err)

		_, err = f.svc.UpdateStatus(ctx, admin, order.ID, "Cancelled")
		require.NoError(t, err)

		want := 3
		if restock {
			want = 5
		}
		assert.Equal(t, want, f.stock(t, gpu), "restock=%v", restock)
	}
}

func TestGetOrder_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gpu := f.product(t, "GPU-X", "10.00", 5)
	order, err := f.svc.PlaceOrder(ctx, alice, input(domain.Item{ProductID: gpu, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, bob, order.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	own, err := f.svc.GetOrder(ctx, alice, order.ID)
	require.NoError(t, err)
	assert.Len(t, own.Lines, 1)

	_, err = f.svc.GetOrder(ctx, admin, order.ID)
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, bob, order.ID+1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListAll_AdminWithCustomers(t *testing.T) {
	f := newFixture(t, WithCustomerDirectory(fakeDirectory{
		alice.UserID: {UserID: alice.UserID, Username: "alice", Email: "alice@example.com"},
	}))
	ctx := context.Background()
	gpu := f.product(t, "GPU-X", "10.00", 5)
	first, err := f.svc.PlaceOrder(ctx, alice, input(domain.Item{ProductID: gpu, Quantity: 1}))
	require.NoError(t, err)
	second, err := f.svc.PlaceOrder(ctx, bob, input(domain.Item{ProductID: gpu, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.svc.ListAll(ctx, alice)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	all, err := f.svc.ListAll(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
	require.NotNil(t, all[1].Customer)
	assert.Equal(t, "alice@example.com", all[1].Customer.Email)
	assert.Nil(t, all[0].Customer)
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gpu := f.product(t, "GPU-X", "10.00", 5)
	order, err := f.svc.PlaceOrder(ctx, alice, input(domain.Item{ProductID: gpu, Quantity: 1}))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, alice, order.ID), auth.ErrForbidden)
	require.NoError(t, f.svc.DeleteOrder(ctx, admin, order.ID))
	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, admin, order.ID), ports.ErrNotFound)

	_, err = f.svc.GetOrder(ctx, admin, order.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.Equal(t, 4, f.stock(t, gpu))
	assert.Contains(t, f.events.types(), domain.EventOrderDeleted)
}

func TestPublishFailureDoesNotFailPlacement(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker unavailable")
	gpu := f.product(t, "GPU-X", "10.00", 5)

	_, err := f.svc.PlaceOrder(context.Background(), alice, input(domain.Item{ProductID: gpu, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, 4, f.stock(t, gpu))
}

func TestPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gpu := f.product(t, "GPU-X", "10.00", 5)
	in := input(domain.Item{ProductID: gpu, Quantity: 3})
	in.PaymentMethod = "CreditCard"
	order, err := f.svc.PlaceOrder(ctx, alice, in)
	require.NoError(t, err)
	require.NotNil(t, order.Payment)
	assert.NotZero(t, order.Payment.ID)
	assert.Equal(t, order.ID, order.Payment.OrderID)
	assert.Equal(t, domain.PaymentPending, order.Payment.Status)
	assert.Equal(t, domain.PaymentCreditCard, order.Payment.Method)
	assert.True(t, order.Payment.Amount.Equal(order.TotalAmount))
	paymentID := order.Payment.ID

	own, err := f.svc.GetPayment(ctx, alice, paymentID)
	require.NoError(t, err)
	assert.Equal(t, paymentID, own.ID)
	_, err = f.svc.GetPayment(ctx, bob, paymentID)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = f.svc.GetPayment(ctx, admin, paymentID+100)
	assert.ErrorIs(t, err, ports.ErrPaymentNotFound)

	_, err = f.svc.ListPayments(ctx, alice)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = f.svc.UpdatePaymentStatus(ctx, alice, paymentID, "Completed")
	assert.ErrorIs(t, err, auth.ErrForbidden)

	for _, raw := range []string{"completed", "Paid", ""} {
		_, err = f.svc.UpdatePaymentStatus(ctx, admin, paymentID, raw)
		assert.ErrorIs(t, err, ErrInvalidInput, "%q", raw)
		assert.ErrorIs(t, err, domain.ErrInvalidPaymentStatus, "%q", raw)
	}

	failed, err := f.svc.UpdatePaymentStatus(ctx, admin, paymentID, "Failed")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, failed.Status)
	completed, err := f.svc.UpdatePaymentStatus(ctx, admin, paymentID, "Completed")
	require.NoError(t, err)
	require.NotNil(t, completed.PaidAt)
	_, err = f.svc.UpdatePaymentStatus(ctx, admin, paymentID, "Pending")
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentTransition)

	reloaded, err := f.svc.GetOrder(ctx, alice, order.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Payment)
	assert.Equal(t, domain.PaymentCompleted, reloaded.Payment.Status)

	all, err := f.svc.ListPayments(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, f.svc.DeleteOrder(ctx, admin, order.ID))
	_, err = f.svc.GetPayment(ctx, admin, paymentID)
	assert.ErrorIs(t, err, ports.ErrPaymentNotFound)
}
