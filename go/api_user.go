package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/computerstore/storefront-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/computerstore/storefront-api/internal/domains/users/ports"
	apierrors "github.com/computerstore/storefront-api/internal/shared/errors"
)

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	FullName string `json:"fullName" binding:"max=255"`
	Phone    string `json:"phone" binding:"max=32"`
	Address  string `json:"address"`
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest is the body of PUT /users/:id. Omitted fields keep their value.
type UpdateUserRequest struct {
	Password *string `json:"password"`
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"fullName" binding:"omitempty,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
	Address  *string `json:"address"`
}

// UserAPI implements the account endpoints.
type UserAPI struct {
	service   userports.Service
	responder *apierrors.Responder
}

// NewUserAPI wires dependencies.
func NewUserAPI(service userports.Service, responder *apierrors.Responder) UserAPI {
	return UserAPI{service: service, responder: responderOrDefault(responder)}
}

// Post /api/users
// Register a customer account
func (api *UserAPI) Register(c *gin.Context) {
	var payload RegisterRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	user, err := api.service.Register(c.Request.Context(), userports.RegisterInput{
		Username: payload.Username,
		Password: payload.Password,
		Email:    payload.Email,
		FullName: payload.FullName,
		Phone:    payload.Phone,
		Address:  payload.Address,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainUser(user))
}

// Post /api/users/login
// Exchange credentials for a bearer token
func (api *UserAPI) Login(c *gin.Context) {
	var payload LoginRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromLoginResult(result))
}

// Get /api/users/me
// Profile of the calling user
func (api *UserAPI) Me(c *gin.Context) {
	user, err := api.service.Me(c.Request.Context(), callerIdentity(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Get /api/users
// List every account (admin)
func (api *UserAPI) ListUsers(c *gin.Context) {
	users, err := api.service.List(c.Request.Context(), callerIdentity(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUsers(users))
}

// Get /api/users/:id
// Account by ID (owner or admin)
func (api *UserAPI) GetUser(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	user, err := api.service.Get(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Put /api/users/:id
// Update profile fields or password (owner or admin)
func (api *UserAPI) UpdateUser(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	var payload UpdateUserRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	user, err := api.service.Update(c.Request.Context(), callerIdentity(c), userports.UpdateInput{
		ID:       id,
		Password: payload.Password,
		Email:    payload.Email,
		FullName: payload.FullName,
		Phone:    payload.Phone,
		Address:  payload.Address,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Delete /api/users/:id
// Remove an account (admin)
func (api *UserAPI) DeleteUser(c *gin.Context) {
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
