package storefrontserver

import (
	"errors"
	"log/slog"

	cartapp "github.com/computerstore/storefront-api/internal/domains/cart/application"
	cartports "github.com/computerstore/storefront-api/internal/domains/cart/ports"
	catalogapp "github.com/computerstore/storefront-api/internal/domains/catalog/application"
	catalogports "github.com/computerstore/storefront-api/internal/domains/catalog/ports"
	orderapp "github.com/computerstore/storefront-api/internal/domains/orders/application"
	orderdomain "github.com/computerstore/storefront-api/internal/domains/orders/domain"
	orderports "github.com/computerstore/storefront-api/internal/domains/orders/ports"
	reviewapp "github.com/computerstore/storefront-api/internal/domains/reviews/application"
	reviewports "github.com/computerstore/storefront-api/internal/domains/reviews/ports"
	userapp "github.com/computerstore/storefront-api/internal/domains/users/application"
	userports "github.com/computerstore/storefront-api/internal/domains/users/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
	apierrors "github.com/computerstore/storefront-api/internal/shared/errors"
)

// NewResponder builds the problem responder used by every handler. Errors
// none of the mappers recognise are logged on logger and answered with a 500.
func NewResponder(logger *slog.Logger) *apierrors.Responder {
	return apierrors.NewResponder(
		apierrors.WithLogger(logger),
		apierrors.WithMappers(mapAuthError, mapOrderError, mapCatalogError, mapCartError, mapUserError, mapReviewError),
	)
}

func responderOrDefault(r *apierrors.Responder) *apierrors.Responder {
	if r != nil {
		return r
	}
	return NewResponder(slog.Default())
}

func mapAuthError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, auth.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	var stockErr *orderdomain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return apierrors.NewBusinessRuleProblem(stockErr.Error(), map[string]any{
			"productId":   stockErr.ProductID,
			"productName": stockErr.ProductName,
			"available":   stockErr.Available,
			"requested":   stockErr.Requested,
		}), true
	}
	var missing *orderdomain.ProductNotFoundError
	if errors.As(err, &missing) {
		return apierrors.NewNotFoundProblem("product", missing.ProductID), true
	}
	switch {
	case errors.Is(err, orderports.ErrNotFound), errors.Is(err, orderports.ErrPaymentNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, orderdomain.ErrInvalidTransition), errors.Is(err, orderdomain.ErrInvalidPaymentTransition):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, orderapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapCatalogError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, catalogports.ErrNotFound), errors.Is(err, catalogports.ErrCategoryNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, catalogapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapCartError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, cartports.ErrNotFound), errors.Is(err, cartports.ErrProductNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, cartapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapUserError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, userapp.ErrAuthentication):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, userports.ErrUsernameTaken), errors.Is(err, userports.ErrEmailTaken),
		errors.Is(err, userports.ErrUserHasOrders), errors.Is(err, userports.ErrDeleteSelf):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, userports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapReviewError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, reviewports.ErrNotFound), errors.Is(err, reviewports.ErrProductNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, reviewapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
