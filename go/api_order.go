package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/computerstore/storefront-api/internal/domains/orders/adapters/http/mapper"
	orderports "github.com/computerstore/storefront-api/internal/domains/orders/ports"
	apierrors "github.com/computerstore/storefront-api/internal/shared/errors"
)

// OrderAPI implements the checkout and order management endpoints.
type OrderAPI struct {
	service   orderports.Service
	responder *apierrors.Responder
}

// NewOrderAPI wires dependencies.
func NewOrderAPI(service orderports.Service, responder *apierrors.Responder) OrderAPI {
	return OrderAPI{service: service, responder: responderOrDefault(responder)}
}

// Post /api/orders
// Place an order from the submitted items
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	var payload orderhttpmapper.PlaceOrderRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	order, err := api.service.PlaceOrder(c.Request.Context(), callerIdentity(c), orderhttpmapper.ToPlaceOrderInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

// Get /api/orders/mine
// Orders of the calling user, newest first
func (api *OrderAPI) ListMyOrders(c *gin.Context) {
	orders, err := api.service.ListMine(c.Request.Context(), callerIdentity(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Get /api/orders
// Every order with customer contact fields (admin)
func (api *OrderAPI) ListOrders(c *gin.Context) {
	orders, err := api.service.ListAll(c.Request.Context(), callerIdentity(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Get /api/orders/:id
// Find order by ID; owner or admin only
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /api/orders/:id/status
// Move an order along its lifecycle (admin)
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	var payload orderhttpmapper.UpdateStatusRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), callerIdentity(c), id, payload.Status)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Delete /api/orders/:id
// Delete an order and its lines (admin)
func (api *OrderAPI) DeleteOrder(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	if err := api.service.DeleteOrder(c.Request.Context(), callerIdentity(c), id); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /api/payments
// Every payment record, newest first (admin)
func (api *OrderAPI) ListPayments(c *gin.Context) {
	payments, err := api.service.ListPayments(c.Request.Context(), callerIdentity(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainPayments(payments))
}

// Get /api/payments/:id
// Find payment by ID; owner of the order or admin
func (api *OrderAPI) GetPayment(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	payment, err := api.service.GetPayment(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainPayment(payment))
}

// Put /api/payments/:id/status
// Record a settlement outcome (admin)
func (api *OrderAPI) UpdatePaymentStatus(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	var payload orderhttpmapper.UpdatePaymentRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	payment, err := api.service.UpdatePaymentStatus(c.Request.Context(), callerIdentity(c), id, payload.Status)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainPayment(payment))
}
