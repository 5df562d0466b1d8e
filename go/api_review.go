package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reviewhttpmapper "github.com/computerstore/storefront-api/internal/domains/reviews/adapters/http/mapper"
	reviewports "github.com/computerstore/storefront-api/internal/domains/reviews/ports"
	apierrors "github.com/computerstore/storefront-api/internal/shared/errors"
)

// ReviewAPI implements the product review endpoints.
type ReviewAPI struct {
	service   reviewports.Service
	responder *apierrors.Responder
}

// NewReviewAPI wires dependencies.
func NewReviewAPI(service reviewports.Service, responder *apierrors.Responder) ReviewAPI {
	return ReviewAPI{service: service, responder: responderOrDefault(responder)}
}

// Get /api/products/:id/reviews
// List a product's reviews, newest first
func (api *ReviewAPI) ListProductReviews(c *gin.Context) {
	productID, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	reviews, err := api.service.ListForProduct(c.Request.Context(), productID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviewhttpmapper.FromDomainList(reviews))
}

// Post /api/reviews
// Review a product
func (api *ReviewAPI) CreateReview(c *gin.Context) {
	var payload reviewhttpmapper.CreateReviewRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	review, err := api.service.Create(c.Request.Context(), callerIdentity(c), reviewports.CreateInput{
		ProductID: payload.ProductID,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reviewhttpmapper.FromDomain(review))
}

// Put /api/reviews/:id
// Change a review (author or admin)
func (api *ReviewAPI) UpdateReview(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	var payload reviewhttpmapper.UpdateReviewRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	review, err := api.service.Update(c.Request.Context(), callerIdentity(c), reviewports.UpdateInput{
		ID:      id,
		Rating:  payload.Rating,
		Comment: payload.Comment,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviewhttpmapper.FromDomain(review))
}

// Delete /api/reviews/:id
// Remove a review (author or admin)
func (api *ReviewAPI) DeleteReview(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	if err := api.service.Delete(c.Request.Context(), callerIdentity(c), id); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
