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

	userdomain "github.com/computerstore/storefront-api/internal/domains/users/domain"
	userports "github.com/computerstore/storefront-api/internal/domains/users/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

const tracerName = "github.com/computerstore/storefront-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Register(ctx context.Context, input userports.RegisterInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register", trace.WithAttributes(attribute.String("user.username", input.Username)))
	defer span.End()
	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user", slog.String("username", input.Username))
	}
	s.metrics.recordRegistered(ctx)
	s.logInfo(ctx, "user registered", slog.String("username", result.Username), slog.Int64("user.id", result.ID))
	return result, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*userports.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()
	result, err := s.inner.Login(ctx, username, password)
	if err != nil {
		s.metrics.recordLoginFailure(ctx)
		return nil, s.handleError(ctx, span, err, "login failed", slog.String("username", username))
	}
	s.metrics.recordLogin(ctx)
	return result, nil
}

// Authenticate runs on every authenticated request, so only failures are logged.
func (s *Service) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	identity, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		return auth.Identity{}, s.handleError(ctx, span, err, "token rejected")
	}
	span.SetAttributes(attribute.Int64("user.id", identity.UserID), attribute.String("user.role", string(identity.Role)))
	return identity, nil
}

func (s *Service) Me(ctx context.Context, caller auth.Identity) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Me", trace.WithAttributes(attribute.Int64("user.id", caller.UserID)))
	defer span.End()
	user, err := s.inner.Me(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load profile", slog.Int64("user.id", caller.UserID))
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, caller auth.Identity) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.List", trace.WithAttributes(attribute.Int64("user.id", caller.UserID)))
	defer span.End()
	users, err := s.inner.List(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users", slog.Int64("user.id", caller.UserID))
	}
	span.SetAttributes(attribute.Int("user.count", len(users)))
	return users, nil
}

func (s *Service) Get(ctx context.Context, caller auth.Identity, id int64) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Get", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()
	user, err := s.inner.Get(ctx, caller, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load user", slog.Int64("user.id", id), slog.Int64("caller.id", caller.UserID))
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, input userports.UpdateInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Update", trace.WithAttributes(attribute.Int64("user.id", input.ID)))
	defer span.End()
	user, err := s.inner.Update(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update user", slog.Int64("user.id", input.ID), slog.Int64("caller.id", caller.UserID))
	}
	s.logInfo(ctx, "user updated", slog.Int64("user.id", user.ID), slog.Int64("caller.id", caller.UserID),
		slog.Bool("password_changed", input.Password != nil))
	return user, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Delete", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()
	if err := s.inner.Delete(ctx, caller, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete user", slog.Int64("user.id", id), slog.Int64("caller.id", caller.UserID))
	}
	s.logInfo(ctx, "user deleted", slog.Int64("user.id", id), slog.Int64("caller.id", caller.UserID))
	return nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

type serviceMetrics struct {
	registered    metric.Int64Counter
	logins        metric.Int64Counter
	loginFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of accounts registered"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of successful logins"))
	failures, _ := m.Int64Counter("users.service.login_failures", metric.WithDescription("Number of rejected logins"))
	return serviceMetrics{registered: registered, logins: logins, loginFailures: failures}
}

func (m serviceMetrics) recordRegistered(ctx context.Context) {
	if m.registered != nil {
		m.registered.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLoginFailure(ctx context.Context) {
	if m.loginFailures != nil {
		m.loginFailures.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
