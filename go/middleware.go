package storefrontserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/computerstore/storefront-api/internal/shared/auth"
	apierrors "github.com/computerstore/storefront-api/internal/shared/errors"
	"github.com/computerstore/storefront-api/internal/shared/ratelimit"
)

// HeaderRequestID carries the correlation id of a request.
const HeaderRequestID = "X-Request-ID"

const identityContextKey = "storefront.identity"

// Authenticator resolves a bearer token to the calling identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

// RequestID propagates X-Request-ID, generating one when the client sent none.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetString(HeaderRequestID)),
		}
		if id, ok := identityFrom(c); ok {
			attrs = append(attrs, slog.Int64("user.id", id.UserID))
		}
		logger.LogAttrs(c.Request.Context(), level, "http request", attrs...)
	}
}

// Authenticate resolves the bearer token and stores the identity on the
// request. When admin is true the caller must also hold the admin role.
func Authenticate(authenticator Authenticator, responder *apierrors.Responder, admin bool) gin.HandlerFunc {
	responder = responderOrDefault(responder)
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
			return
		}
		identity, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			responder.RespondError(c, err)
			return
		}
		if admin {
			if err := auth.RequireAdmin(identity); err != nil {
				responder.RespondError(c, err)
				return
			}
		}
		c.Set(identityContextKey, identity)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RateLimit rejects callers that exceed limiter. Requests are keyed by user
// id when authenticated and by client IP otherwise. Limiter failures let the
// request through.
func RateLimit(limiter ratelimit.Limiter, responder *apierrors.Responder, logger *slog.Logger) gin.HandlerFunc {
	responder = responderOrDefault(responder)
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id, ok := identityFrom(c); ok {
			key = fmt.Sprintf("user:%d", id.UserID)
		}
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.LogAttrs(c.Request.Context(), slog.LevelWarn, "rate limiter unavailable",
				slog.String("key", key),
				slog.String("error", err.Error()))
			c.Next()
			return
		}
		if !allowed {
			responder.Respond(c, apierrors.ErrTooManyRequests.WithDetail("too many checkout attempts, slow down"))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func identityFrom(c *gin.Context) (auth.Identity, bool) {
	value, ok := c.Get(identityContextKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := value.(auth.Identity)
	return id, ok
}

// callerIdentity returns the identity set by Authenticate; the zero value
// makes the services answer with ErrUnauthenticated.
func callerIdentity(c *gin.Context) auth.Identity {
	id, _ := identityFrom(c)
	return id
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

func init() {
	binding.EnableDecoderDisallowUnknownFields = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// jsonFieldName makes validation errors name fields the way clients send them.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// bindJSON binds and validates the request body into dest. On failure it has
// already answered the request and returns false.
func bindJSON(c *gin.Context, responder *apierrors.Responder, dest any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	err := c.ShouldBindJSON(dest)
	if err == nil {
		return true
	}
	var (
		invalid  validator.ValidationErrors
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &invalid):
		responder.ValidationFailed(c, fieldErrors(invalid))
	case errors.As(err, &tooLarge):
		responder.Respond(c, apierrors.ErrPayloadTooLarge.WithDetail(
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
	case errors.Is(err, io.EOF):
		responder.BadRequest(c, "request body is required")
	default:
		responder.BadRequest(c, "malformed request body: "+err.Error())
	}
	return false
}

// fieldErrors keys each failure by its JSON path, e.g. items[0].quantity.
func fieldErrors(invalid validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		path := fe.Namespace()
		if _, rest, found := strings.Cut(path, "."); found {
			path = rest
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[path] = "failed " + rule
	}
	return out
}

// pathInt64 binds a required positive integer path parameter.
func pathInt64(c *gin.Context, name string) (int64, error) {
	var value int64
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("parameter %q must be a positive integer", name)
	}
	return value, nil
}
