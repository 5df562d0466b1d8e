package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	carthttpmapper "github.com/computerstore/storefront-api/internal/domains/cart/adapters/http/mapper"
	cartports "github.com/computerstore/storefront-api/internal/domains/cart/ports"
	apierrors "github.com/computerstore/storefront-api/internal/shared/errors"
)

// AddCartItemRequest is the body of POST /cart/items.
type AddCartItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"gte=0"`
}

// SetCartQuantityRequest is the body of PUT /cart/items/:productId.
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}

// CartAPI implements the cart endpoints. Every route requires a caller.
type CartAPI struct {
	service   cartports.Service
	responder *apierrors.Responder
}

// NewCartAPI wires dependencies.
func NewCartAPI(service cartports.Service, responder *apierrors.Responder) CartAPI {
	return CartAPI{service: service, responder: responderOrDefault(responder)}
}

// Get /api/cart
func (api *CartAPI) GetCart(c *gin.Context) {
	view, err := api.service.Get(c.Request.Context(), callerIdentity(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromView(view))
}

// Post /api/cart/items
// Add units of a product to the cart
func (api *CartAPI) AddItem(c *gin.Context) {
	var payload AddCartItemRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}
	item, err := api.service.AddItem(c.Request.Context(), callerIdentity(c), payload.ProductID, payload.Quantity)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, carthttpmapper.FromDomainItem(item))
}

// Put /api/cart/items/:productId
// Overwrite the quantity of a cart item; zero removes it
func (api *CartAPI) SetQuantity(c *gin.Context) {
	productID, err := pathInt64(c, "productId")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	var payload SetCartQuantityRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	item, err := api.service.SetQuantity(c.Request.Context(), callerIdentity(c), productID, payload.Quantity)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	if item == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainItem(item))
}

// Delete /api/cart/items/:productId
func (api *CartAPI) RemoveItem(c *gin.Context) {
	productID, err := pathInt64(c, "productId")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	if err := api.service.RemoveItem(c.Request.Context(), callerIdentity(c), productID); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete /api/cart
func (api *CartAPI) ClearCart(c *gin.Context) {
	if err := api.service.Clear(c.Request.Context(), callerIdentity(c)); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
