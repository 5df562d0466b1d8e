package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrInvalidProductID = errors.New("product id must be greater than zero")
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a product with an optional comment.
type Review struct {
	ID         int64
	UserID     int64
	ProductID  int64
	Rating     int
	Comment    string
	ReviewDate time.Time
	UpdatedAt  time.Time
}

// NewReview validates and constructs a review.
func NewReview(userID, productID int64, rating int, comment string) (*Review, error) {
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}
	r := &Review{UserID: userID, ProductID: productID}
	if err := r.Rate(rating); err != nil {
		return nil, err
	}
	r.SetComment(comment)
	return r, nil
}

// Rate replaces the star rating.
func (r *Review) Rate(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	r.Rating = rating
	return nil
}

func (r *Review) SetComment(comment string) {
	r.Comment = strings.TrimSpace(comment)
}

// Validate re-applies invariants before persistence.
func (r *Review) Validate() error {
	if r.ProductID <= 0 {
		return ErrInvalidProductID
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
