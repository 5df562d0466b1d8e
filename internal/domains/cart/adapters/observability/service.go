package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	cartdomain "github.com/computerstore/storefront-api/internal/domains/cart/domain"
	cartports "github.com/computerstore/storefront-api/internal/domains/cart/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

const tracerName = "github.com/computerstore/storefront-api/internal/domains/cart/adapters/observability/service"

// Service decorates the cart service with tracing, logging, and metrics.
type Service struct {
	inner      cartports.Service
	tracer     trace.Tracer
	logger     *slog.Logger
	itemsAdded metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m != nil {
			s.itemsAdded, _ = m.Int64Counter("cart.service.items_added", metric.WithDescription("Units added to carts"))
		}
	}
}

// New wraps the core cart service.
func New(inner cartports.Service, opts ...Option) cartports.Service {
	s := &Service{inner: inner}
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

func (s *Service) Get(ctx context.Context, caller auth.Identity) (*cartports.View, error) {
	ctx, span := s.start(ctx, "CartService.Get", caller)
	defer span.End()

	view, err := s.inner.Get(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load cart", caller)
	}
	span.SetAttributes(attribute.Int("cart.lines", len(view.Lines)))
	return view, nil
}

func (s *Service) AddItem(ctx context.Context, caller auth.Identity, productID int64, quantity int) (*cartdomain.Item, error) {
	ctx, span := s.start(ctx, "CartService.AddItem", caller, attribute.Int64("product.id", productID), attribute.Int("quantity", quantity))
	defer span.End()

	item, err := s.inner.AddItem(ctx, caller, productID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add cart item", caller, slog.Int64("product.id", productID))
	}
	if s.itemsAdded != nil {
		s.itemsAdded.Add(ctx, int64(quantity))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "cart item added",
		slog.Int64("user.id", caller.UserID), slog.Int64("product.id", productID), slog.Int("quantity", item.Quantity))
	return item, nil
}

func (s *Service) SetQuantity(ctx context.Context, caller auth.Identity, productID int64, quantity int) (*cartdomain.Item, error) {
	ctx, span := s.start(ctx, "CartService.SetQuantity", caller, attribute.Int64("product.id", productID), attribute.Int("quantity", quantity))
	defer span.End()

	item, err := s.inner.SetQuantity(ctx, caller, productID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update cart item", caller, slog.Int64("product.id", productID))
	}
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, caller auth.Identity, productID int64) error {
	ctx, span := s.start(ctx, "CartService.RemoveItem", caller, attribute.Int64("product.id", productID))
	defer span.End()

	if err := s.inner.RemoveItem(ctx, caller, productID); err != nil {
		return s.handleError(ctx, span, err, "failed to remove cart item", caller, slog.Int64("product.id", productID))
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, caller auth.Identity) error {
	ctx, span := s.start(ctx, "CartService.Clear", caller)
	defer span.End()

	if err := s.inner.Clear(ctx, caller); err != nil {
		return s.handleError(ctx, span, err, "failed to clear cart", caller)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "cart cleared", slog.Int64("user.id", caller.UserID))
	return nil
}

func (s *Service) start(ctx context.Context, name string, caller auth.Identity, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.Int64("user.id", caller.UserID))
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, caller auth.Identity, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.Int64("user.id", caller.UserID), slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	return err
}

var _ cartports.Service = (*Service)(nil)
