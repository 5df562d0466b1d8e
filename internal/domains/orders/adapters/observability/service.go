package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/computerstore/storefront-api/internal/domains/orders/application"
	orderdomain "github.com/computerstore/storefront-api/internal/domains/orders/domain"
	orderports "github.com/computerstore/storefront-api/internal/domains/orders/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

const tracerName = "github.com/computerstore/storefront-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, caller auth.Identity, input orderports.PlaceOrderInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.Int64("user.id", caller.UserID), attribute.Int("order.items", len(input.Items))))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int64("user.id", caller.UserID), slog.Int("order.items", len(input.Items)))
	result, err := s.inner.PlaceOrder(ctx, caller, input)
	if err != nil {
		s.metrics.recordRejected(ctx, rejectReason(err))
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.Int64("user.id", caller.UserID))
	}
	span.SetAttributes(attribute.Int64("order.id", result.ID), attribute.String("order.total", result.TotalAmount.String()))
	s.metrics.recordPlaced(ctx, result)
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", result.ID),
		slog.Int64("user.id", result.UserID),
		slog.String("order.total", result.TotalAmount.String()),
		slog.Int("order.lines", len(result.Lines)))
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, orderID int64, status string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus",
		trace.WithAttributes(attribute.Int64("order.id", orderID), attribute.String("order.status", status)))
	defer span.End()

	result, err := s.inner.UpdateStatus(ctx, caller, orderID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.Int64("order.id", orderID), slog.String("status", status))
	}
	s.metrics.recordStatusChange(ctx, result.Status)
	s.logInfo(ctx, "order status updated", slog.Int64("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, caller auth.Identity, orderID int64) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, caller, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", orderID))
	}
	return result, nil
}

func (s *Service) ListMine(ctx context.Context, caller auth.Identity) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListMine", trace.WithAttributes(attribute.Int64("user.id", caller.UserID)))
	defer span.End()

	result, err := s.inner.ListMine(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.Int64("user.id", caller.UserID))
	}
	span.SetAttributes(attribute.Int("order.count", len(result)))
	return result, nil
}

func (s *Service) ListAll(ctx context.Context, caller auth.Identity) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListAll")
	defer span.End()

	result, err := s.inner.ListAll(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list all orders", slog.Int64("user.id", caller.UserID))
	}
	span.SetAttributes(attribute.Int("order.count", len(result)))
	return result, nil
}

func (s *Service) DeleteOrder(ctx context.Context, caller auth.Identity, orderID int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteOrder", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	s.logInfo(ctx, "deleting order", slog.Int64("order.id", orderID))
	if err := s.inner.DeleteOrder(ctx, caller, orderID); err != nil {
		return s.handleError(ctx, span, err, "failed to delete order", slog.Int64("order.id", orderID))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "order deleted", slog.Int64("order.id", orderID))
	return nil
}

func (s *Service) GetPayment(ctx context.Context, caller auth.Identity, paymentID int64) (*orderdomain.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetPayment", trace.WithAttributes(attribute.Int64("payment.id", paymentID)))
	defer span.End()

	result, err := s.inner.GetPayment(ctx, caller, paymentID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load payment", slog.Int64("payment.id", paymentID))
	}
	return result, nil
}

func (s *Service) ListPayments(ctx context.Context, caller auth.Identity) ([]*orderdomain.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListPayments")
	defer span.End()

	result, err := s.inner.ListPayments(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list payments", slog.Int64("user.id", caller.UserID))
	}
	span.SetAttributes(attribute.Int("payment.count", len(result)))
	return result, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, caller auth.Identity, paymentID int64, status string) (*orderdomain.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdatePaymentStatus",
		trace.WithAttributes(attribute.Int64("payment.id", paymentID), attribute.String("payment.status", status)))
	defer span.End()

	result, err := s.inner.UpdatePaymentStatus(ctx, caller, paymentID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update payment status",
			slog.Int64("payment.id", paymentID), slog.String("status", status))
	}
	s.metrics.recordPaymentChange(ctx, result.Status)
	s.logInfo(ctx, "payment status updated",
		slog.Int64("payment.id", result.ID),
		slog.Int64("order.id", result.OrderID),
		slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// logError logs expected business rejections at warn and everything else at error.
func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	level := slog.LevelError
	if rejectReason(err) != "internal" {
		level = slog.LevelWarn
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func rejectReason(err error) string {
	var (
		stockErr   *orderdomain.InsufficientStockError
		missingErr *orderdomain.ProductNotFoundError
	)
	switch {
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.As(err, &missingErr):
		return "product_not_found"
	case errors.Is(err, application.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, orderdomain.ErrInvalidTransition), errors.Is(err, orderdomain.ErrInvalidPaymentTransition):
		return "invalid_transition"
	case errors.Is(err, orderports.ErrNotFound), errors.Is(err, orderports.ErrPaymentNotFound):
		return "not_found"
	case errors.Is(err, auth.ErrForbidden), errors.Is(err, auth.ErrUnauthenticated):
		return "unauthorized"
	default:
		return "internal"
	}
}

type serviceMetrics struct {
	ordersPlaced   metric.Int64Counter
	ordersRejected metric.Int64Counter
	statusChanges  metric.Int64Counter
	ordersDeleted  metric.Int64Counter
	orderValue     metric.Float64Histogram
	paymentChanges metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	rejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of checkouts rejected"))
	changes, _ := m.Int64Counter("orders.service.status_changes", metric.WithDescription("Number of order status transitions"))
	deleted, _ := m.Int64Counter("orders.service.deleted", metric.WithDescription("Number of orders deleted"))
	value, _ := m.Float64Histogram("orders.service.order_value", metric.WithDescription("Total amount of placed orders"))
	payments, _ := m.Int64Counter("orders.service.payment_changes", metric.WithDescription("Number of payment status transitions"))
	return serviceMetrics{
		ordersPlaced:   placed,
		ordersRejected: rejected,
		statusChanges:  changes,
		ordersDeleted:  deleted,
		orderValue:     value,
		paymentChanges: payments,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, order *orderdomain.Order) {
	attrs := metric.WithAttributes(attribute.String("order.payment_method", string(order.PaymentMethod)))
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, attrs)
	}
	if m.orderValue != nil {
		m.orderValue.Record(ctx, order.TotalAmount.InexactFloat64(), attrs)
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, reason string) {
	if m.ordersRejected != nil {
		m.ordersRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m serviceMetrics) recordStatusChange(ctx context.Context, status orderdomain.Status) {
	if m.statusChanges != nil {
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordPaymentChange(ctx context.Context, status orderdomain.PaymentStatus) {
	if m.paymentChanges != nil {
		m.paymentChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("payment.status", string(status))))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.ordersDeleted != nil {
		m.ordersDeleted.Add(ctx, 1)
	}
}

var _ orderports.Service = (*Service)(nil)
