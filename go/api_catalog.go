package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"

	cataloghttpmapper "github.com/computerstore/storefront-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/computerstore/storefront-api/internal/domains/catalog/ports"
	apierrors "github.com/computerstore/storefront-api/internal/shared/errors"
)

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	CategoryID  int64           `json:"categoryId" binding:"gte=0"`
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"gte=0"`
	Images      []string        `json:"images"`
}

// UpdateProductRequest is the body of PUT /products/:id. Omitted fields keep their value.
type UpdateProductRequest struct {
	CategoryID  *int64           `json:"categoryId" binding:"omitempty,gte=0"`
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
	Images      *[]string        `json:"images"`
}

// CreateCategoryRequest is the body of POST /categories.
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	Description string `json:"description"`
}

// UpdateCategoryRequest is the body of PUT /categories/:id.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=128"`
	Description *string `json:"description"`
}

// CatalogAPI implements the product and category endpoints.
type CatalogAPI struct {
	service   catalogports.Service
	responder *apierrors.Responder
}

// NewCatalogAPI wires dependencies.
func NewCatalogAPI(service catalogports.Service, responder *apierrors.Responder) CatalogAPI {
	return CatalogAPI{service: service, responder: responderOrDefault(responder)}
}

// Get /api/products
// List products, optionally by category
func (api *CatalogAPI) ListProducts(c *gin.Context) {
	var filter catalogports.ProductFilter
	if err := runtime.BindQueryParameter("form", true, false, "categoryId", c.Request.URL.Query(), &filter.CategoryID); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	products, err := api.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromProjectionList(products))
}

// Get /api/products/:id
// Find product by ID
func (api *CatalogAPI) GetProduct(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromProjection(product))
}

// Post /api/products
// Add a product to the catalog (admin)
func (api *CatalogAPI) CreateProduct(c *gin.Context) {
	var payload CreateProductRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	created, err := api.service.CreateProduct(c.Request.Context(), callerIdentity(c), catalogports.CreateProductInput{
		CategoryID:  payload.CategoryID,
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Images:      payload.Images,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cataloghttpmapper.FromProjection(created))
}

// Put /api/products/:id
// Update an existing product (admin)
func (api *CatalogAPI) UpdateProduct(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	var payload UpdateProductRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	updated, err := api.service.UpdateProduct(c.Request.Context(), callerIdentity(c), catalogports.UpdateProductInput{
		ID:          id,
		CategoryID:  payload.CategoryID,
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Images:      payload.Images,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromProjection(updated))
}

// Delete /api/products/:id
// Remove a product (admin)
func (api *CatalogAPI) DeleteProduct(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	if err := api.service.DeleteProduct(c.Request.Context(), callerIdentity(c), id); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /api/categories
// List categories
func (api *CatalogAPI) ListCategories(c *gin.Context) {
	categories, err := api.service.ListCategories(c.Request.Context())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainCategories(categories))
}

// Post /api/categories
// Create a category (admin)
func (api *CatalogAPI) CreateCategory(c *gin.Context) {
	var payload CreateCategoryRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	category, err := api.service.CreateCategory(c.Request.Context(), callerIdentity(c), payload.Name, payload.Description)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cataloghttpmapper.FromDomainCategory(category))
}

// Get /api/categories/:id
// Find category by ID
func (api *CatalogAPI) GetCategory(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	category, err := api.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainCategory(category))
}

// Put /api/categories/:id
// Rename or describe a category (admin)
func (api *CatalogAPI) UpdateCategory(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	var payload UpdateCategoryRequest
	if !bindJSON(c, api.responder, &payload) {
		return
	}
	category, err := api.service.UpdateCategory(c.Request.Context(), callerIdentity(c), catalogports.UpdateCategoryInput{
		ID:          id,
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainCategory(category))
}

// Delete /api/categories/:id
// Remove a category; its products become uncategorised (admin)
func (api *CatalogAPI) DeleteCategory(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	if err := api.service.DeleteCategory(c.Request.Context(), callerIdentity(c), id); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
