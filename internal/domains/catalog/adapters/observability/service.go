package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/computerstore/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/computerstore/storefront-api/internal/domains/catalog/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

const tracerName = "github.com/computerstore/storefront-api/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing and logging.
type Service struct {
	inner  catalogports.Service
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

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
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

func (s *Service) ListProducts(ctx context.Context, filter catalogports.ProductFilter) ([]*catalogports.ProductProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts", trace.WithAttributes(attribute.Int64("category.id", filter.CategoryID)))
	defer span.End()

	result, err := s.inner.ListProducts(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("products.count", len(result)))
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*catalogports.ProductProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	result, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load product", slog.Int64("product.id", id))
	}
	return result, nil
}

func (s *Service) CreateProduct(ctx context.Context, caller auth.Identity, input catalogports.CreateProductInput) (*catalogports.ProductProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateProduct", trace.WithAttributes(attribute.String("product.name", input.Name)))
	defer span.End()

	result, err := s.inner.CreateProduct(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create product", slog.String("product.name", input.Name))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product created",
		slog.Int64("product.id", result.Entity.ID), slog.Int("product.stock", result.Entity.Stock), slog.Int64("user.id", caller.UserID))
	return result, nil
}

func (s *Service) UpdateProduct(ctx context.Context, caller auth.Identity, input catalogports.UpdateProductInput) (*catalogports.ProductProjection, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", input.ID)))
	defer span.End()

	result, err := s.inner.UpdateProduct(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update product", slog.Int64("product.id", input.ID))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product updated",
		slog.Int64("product.id", result.Entity.ID), slog.Int("product.stock", result.Entity.Stock), slog.Int64("user.id", caller.UserID))
	return result, nil
}

func (s *Service) DeleteProduct(ctx context.Context, caller auth.Identity, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := s.inner.DeleteProduct(ctx, caller, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete product", slog.Int64("product.id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product deleted", slog.Int64("product.id", id), slog.Int64("user.id", caller.UserID))
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*catalogdomain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListCategories")
	defer span.End()

	result, err := s.inner.ListCategories(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list categories")
	}
	return result, nil
}

func (s *Service) CreateCategory(ctx context.Context, caller auth.Identity, name, description string) (*catalogdomain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateCategory", trace.WithAttributes(attribute.String("category.name", name)))
	defer span.End()

	result, err := s.inner.CreateCategory(ctx, caller, name, description)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create category", slog.String("category.name", name))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "category created", slog.Int64("category.id", result.ID))
	return result, nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*catalogdomain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetCategory", trace.WithAttributes(attribute.Int64("category.id", id)))
	defer span.End()

	result, err := s.inner.GetCategory(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load category", slog.Int64("category.id", id))
	}
	return result, nil
}

func (s *Service) UpdateCategory(ctx context.Context, caller auth.Identity, input catalogports.UpdateCategoryInput) (*catalogdomain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateCategory", trace.WithAttributes(attribute.Int64("category.id", input.ID)))
	defer span.End()

	result, err := s.inner.UpdateCategory(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update category", slog.Int64("category.id", input.ID))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "category updated", slog.Int64("category.id", result.ID), slog.Int64("user.id", caller.UserID))
	return result, nil
}

func (s *Service) DeleteCategory(ctx context.Context, caller auth.Identity, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteCategory", trace.WithAttributes(attribute.Int64("category.id", id)))
	defer span.End()

	if err := s.inner.DeleteCategory(ctx, caller, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete category", slog.Int64("category.id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "category deleted", slog.Int64("category.id", id), slog.Int64("user.id", caller.UserID))
	return nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	return err
}

var _ catalogports.Service = (*Service)(nil)
