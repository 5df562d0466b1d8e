package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	reviewdomain "github.com/computerstore/storefront-api/internal/domains/reviews/domain"
	reviewports "github.com/computerstore/storefront-api/internal/domains/reviews/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

const tracerName = "github.com/computerstore/storefront-api/internal/domains/reviews/adapters/observability/service"

// Service decorates the review service with tracing and logging.
type Service struct {
	inner  reviewports.Service
	tracer trace.Tracer
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

// New wraps the core review service.
func New(inner reviewports.Service, opts ...Option) reviewports.Service {
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

func (s *Service) ListForProduct(ctx context.Context, productID int64) ([]*reviewdomain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.ListForProduct", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	result, err := s.inner.ListForProduct(ctx, productID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list reviews", slog.Int64("product.id", productID))
	}
	span.SetAttributes(attribute.Int("reviews.count", len(result)))
	return result, nil
}

func (s *Service) Create(ctx context.Context, caller auth.Identity, input reviewports.CreateInput) (*reviewdomain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Create", trace.WithAttributes(
		attribute.Int64("product.id", input.ProductID), attribute.Int64("user.id", caller.UserID)))
	defer span.End()

	result, err := s.inner.Create(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create review", slog.Int64("product.id", input.ProductID))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "review created",
		slog.Int64("review.id", result.ID), slog.Int64("product.id", result.ProductID), slog.Int("review.rating", result.Rating))
	return result, nil
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, input reviewports.UpdateInput) (*reviewdomain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Update", trace.WithAttributes(attribute.Int64("review.id", input.ID)))
	defer span.End()

	result, err := s.inner.Update(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update review", slog.Int64("review.id", input.ID))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "review updated", slog.Int64("review.id", result.ID), slog.Int64("user.id", caller.UserID))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Delete", trace.WithAttributes(attribute.Int64("review.id", id)))
	defer span.End()

	if err := s.inner.Delete(ctx, caller, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete review", slog.Int64("review.id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "review deleted", slog.Int64("review.id", id), slog.Int64("user.id", caller.UserID))
	return nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	return err
}

var _ reviewports.Service = (*Service)(nil)
