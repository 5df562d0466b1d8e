package application

import (
	"errors"
	"fmt"

	"github.com/computerstore/storefront-api/internal/domains/catalog/domain"
)

// ErrInvalidInput signals the request violated a catalog invariant.
var ErrInvalidInput = errors.New("invalid catalog input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrEmptyCategoryName) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
