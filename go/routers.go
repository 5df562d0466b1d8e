package storefrontserver

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/computerstore/storefront-api/internal/shared/errors"
	"github.com/computerstore/storefront-api/internal/shared/ratelimit"
)

// BasePath prefixes every API route.
const BasePath = "/api"

// Access is the authentication a route requires.
type Access int

const (
	AccessPublic Access = iota
	AccessUser
	AccessAdmin
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI, relative to BasePath.
	Pattern string
	// Access selects the authentication middleware.
	Access Access
	// RateLimited routes pass through the checkout limiter.
	RateLimited bool
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions bundles the handlers and the collaborators the router
// needs to guard them.
type ApiHandleFunctions struct {
	UserAPI    UserAPI
	CatalogAPI CatalogAPI
	CartAPI    CartAPI
	OrderAPI   OrderAPI
	ReviewAPI  ReviewAPI

	Authenticator   Authenticator
	CheckoutLimiter ratelimit.Limiter
	Responder       *apierrors.Responder
	Logger          *slog.Logger
}

// NewRouter returns a new router with the default middleware installed.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	router := gin.New()
	router.Use(DefaultMiddleware(handleFunctions)...)
	return NewRouterWithGinEngine(router, handleFunctions)
}

// DefaultMiddleware is panic recovery, request ids and request logging.
func DefaultMiddleware(handleFunctions ApiHandleFunctions) []gin.HandlerFunc {
	responder := responderOrDefault(handleFunctions.Responder)
	return []gin.HandlerFunc{
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			responder.RespondError(c, fmt.Errorf("panic: %v", recovered))
		}),
		RequestID(),
		RequestLogger(handleFunctions.Logger),
	}
}

// NewRouterWithGinEngine adds the API routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	responder := responderOrDefault(handleFunctions.Responder)
	limiter := handleFunctions.CheckoutLimiter
	if limiter == nil {
		limiter = ratelimit.Unlimited
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.NoRoute(func(c *gin.Context) {
		responder.NotFound(c, "route", c.Request.URL.Path)
	})

	group := router.Group(BasePath)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		chain := make([]gin.HandlerFunc, 0, 3)
		switch route.Access {
		case AccessUser:
			chain = append(chain, Authenticate(handleFunctions.Authenticator, responder, false))
		case AccessAdmin:
			chain = append(chain, Authenticate(handleFunctions.Authenticator, responder, true))
		}
		if route.RateLimited {
			chain = append(chain, RateLimit(limiter, responder, handleFunctions.Logger))
		}
		chain = append(chain, route.HandlerFunc)
		group.Handle(route.Method, route.Pattern, chain...)
	}

	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"Register", http.MethodPost, "/users", AccessPublic, false, h.UserAPI.Register},
		{"Login", http.MethodPost, "/users/login", AccessPublic, false, h.UserAPI.Login},
		{"Me", http.MethodGet, "/users/me", AccessUser, false, h.UserAPI.Me},
		{"ListUsers", http.MethodGet, "/users", AccessAdmin, false, h.UserAPI.ListUsers},
		{"GetUser", http.MethodGet, "/users/:id", AccessUser, false, h.UserAPI.GetUser},
		{"UpdateUser", http.MethodPut, "/users/:id", AccessUser, false, h.UserAPI.UpdateUser},
		{"DeleteUser", http.MethodDelete, "/users/:id", AccessAdmin, false, h.UserAPI.DeleteUser},

		{"ListCategories", http.MethodGet, "/categories", AccessPublic, false, h.CatalogAPI.ListCategories},
		{"CreateCategory", http.MethodPost, "/categories", AccessAdmin, false, h.CatalogAPI.CreateCategory},
		{"GetCategory", http.MethodGet, "/categories/:id", AccessPublic, false, h.CatalogAPI.GetCategory},
		{"UpdateCategory", http.MethodPut, "/categories/:id", AccessAdmin, false, h.CatalogAPI.UpdateCategory},
		{"DeleteCategory", http.MethodDelete, "/categories/:id", AccessAdmin, false, h.CatalogAPI.DeleteCategory},
		{"ListProducts", http.MethodGet, "/products", AccessPublic, false, h.CatalogAPI.ListProducts},
		{"GetProduct", http.MethodGet, "/products/:id", AccessPublic, false, h.CatalogAPI.GetProduct},
		{"CreateProduct", http.MethodPost, "/products", AccessAdmin, false, h.CatalogAPI.CreateProduct},
		{"UpdateProduct", http.MethodPut, "/products/:id", AccessAdmin, false, h.CatalogAPI.UpdateProduct},
		{"DeleteProduct", http.MethodDelete, "/products/:id", AccessAdmin, false, h.CatalogAPI.DeleteProduct},

		{"ListProductReviews", http.MethodGet, "/products/:id/reviews", AccessPublic, false, h.ReviewAPI.ListProductReviews},
		{"CreateReview", http.MethodPost, "/reviews", AccessUser, false, h.ReviewAPI.CreateReview},
		{"UpdateReview", http.MethodPut, "/reviews/:id", AccessUser, false, h.ReviewAPI.UpdateReview},
		{"DeleteReview", http.MethodDelete, "/reviews/:id", AccessUser, false, h.ReviewAPI.DeleteReview},

		{"GetCart", http.MethodGet, "/cart", AccessUser, false, h.CartAPI.GetCart},
		{"ClearCart", http.MethodDelete, "/cart", AccessUser, false, h.CartAPI.ClearCart},
		{"AddCartItem", http.MethodPost, "/cart/items", AccessUser, false, h.CartAPI.AddItem},
		{"SetCartItemQuantity", http.MethodPut, "/cart/items/:productId", AccessUser, false, h.CartAPI.SetQuantity},
		{"RemoveCartItem", http.MethodDelete, "/cart/items/:productId", AccessUser, false, h.CartAPI.RemoveItem},

		{"PlaceOrder", http.MethodPost, "/orders", AccessUser, true, h.OrderAPI.PlaceOrder},
		{"ListMyOrders", http.MethodGet, "/orders/mine", AccessUser, false, h.OrderAPI.ListMyOrders},
		{"ListOrders", http.MethodGet, "/orders", AccessAdmin, false, h.OrderAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/orders/:id", AccessUser, false, h.OrderAPI.GetOrder},
		{"UpdateOrderStatus", http.MethodPut, "/orders/:id/status", AccessAdmin, false, h.OrderAPI.UpdateOrderStatus},
		{"DeleteOrder", http.MethodDelete, "/orders/:id", AccessAdmin, false, h.OrderAPI.DeleteOrder},

		{"ListPayments", http.MethodGet, "/payments", AccessAdmin, false, h.OrderAPI.ListPayments},
		{"GetPayment", http.MethodGet, "/payments/:id", AccessUser, false, h.OrderAPI.GetPayment},
		{"UpdatePaymentStatus", http.MethodPut, "/payments/:id/status", AccessAdmin, false, h.OrderAPI.UpdatePaymentStatus},
	}
}
