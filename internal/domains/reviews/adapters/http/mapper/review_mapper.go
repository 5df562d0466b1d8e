package mapper

import (
	"time"

	reviewdomain "github.com/computerstore/storefront-api/internal/domains/reviews/domain"
)

// CreateReviewRequest is the body of POST /reviews.
type CreateReviewRequest struct {
	ProductID int64  `json:"productId" binding:"required,gt=0"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=2000"`
}

// UpdateReviewRequest is the body of PUT /reviews/:id. Absent fields are kept.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// Review is the JSON shape of a product review.
type Review struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	ProductID  int64     `json:"productId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	ReviewDate time.Time `json:"reviewDate"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func FromDomain(r *reviewdomain.Review) Review {
	if r == nil {
		return Review{}
	}
	return Review{
		ID:         r.ID,
		UserID:     r.UserID,
		ProductID:  r.ProductID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		ReviewDate: r.ReviewDate,
		UpdatedAt:  r.UpdatedAt,
	}
}

func FromDomainList(list []*reviewdomain.Review) []Review {
	result := make([]Review, 0, len(list))
	for _, r := range list {
		result = append(result, FromDomain(r))
	}
	return result
}
