package application

import (
	"errors"
	"fmt"

	"github.com/computerstore/storefront-api/internal/domains/reviews/domain"
)

// ErrInvalidInput signals the request violated a review invariant.
var ErrInvalidInput = errors.New("invalid review input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidRating) || errors.Is(err, domain.ErrInvalidProductID) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
