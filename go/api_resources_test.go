package storefrontserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cataloghttpmapper "github.com/computerstore/storefront-api/internal/domains/catalog/adapters/http/mapper"
	orderhttpmapper "github.com/computerstore/storefront-api/internal/domains/orders/adapters/http/mapper"
	reviewhttpmapper "github.com/computerstore/storefront-api/internal/domains/reviews/adapters/http/mapper"
	userhttpmapper "github.com/computerstore/storefront-api/internal/domains/users/adapters/http/mapper"
	apierrors "github.com/computerstore/storefront-api/internal/shared/errors"
)

func TestCategoryLifecycle(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(t, http.MethodPost, "/api/categories", app.adminTok, map[string]string{"name": "Graphics"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var category cataloghttpmapper.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &category))
	path := fmt.Sprintf("/api/categories/%d", category.ID)

	rec = app.do(t, http.MethodPost, "/api/products", app.adminTok, map[string]any{
		"categoryId": category.ID, "name": "GPU-X", "price": "799.00", "stock": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product cataloghttpmapper.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/categories/999", "", nil).Code)

	rec = app.do(t, http.MethodPut, path, app.tokens["alice"], map[string]string{"name": "GPUs"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = app.do(t, http.MethodPut, path, app.adminTok, map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.do(t, http.MethodPut, path, app.adminTok, map[string]string{"name": "GPUs", "description": "cards"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &category))
	assert.Equal(t, "GPUs", category.Name)
	assert.Equal(t, "cards", category.Description)

	assert.Equal(t, http.StatusNoContent, app.do(t, http.MethodDelete, path, app.adminTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, path, app.adminTok, nil).Code)

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", product.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detached cataloghttpmapper.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detached))
	assert.Zero(t, detached.CategoryID)
}

func TestUserAccountRoutes(t *testing.T) {
	app := newTestApp(t, nil)
	alicePath := fmt.Sprintf("/api/users/%d", app.ids["alice"])

	rec := app.do(t, http.MethodGet, alicePath, app.tokens["alice"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user userhttpmapper.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)

	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, alicePath, app.tokens["bob"], nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, alicePath, app.adminTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/users/999", app.adminTok, nil).Code)

	rec = app.do(t, http.MethodPut, alicePath, app.tokens["alice"], map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.do(t, http.MethodPut, alicePath, app.tokens["alice"], `{"role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.do(t, http.MethodPut, alicePath, app.tokens["alice"], map[string]string{"phone": "555-0199", "fullName": "Alice A."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "555-0199", user.Phone)
	assert.Equal(t, "customer", user.Role)

	bobPath := fmt.Sprintf("/api/users/%d", app.ids["bob"])
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodDelete, bobPath, app.tokens["alice"], nil).Code)
	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", app.ids["admin"]), app.adminTok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, http.StatusNoContent, app.do(t, http.MethodDelete, bobPath, app.adminTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, bobPath, app.adminTok, nil).Code)
}

func TestPaymentRoutes(t *testing.T) {
	app := newTestApp(t, nil)
	gpu := app.seedProduct(t, "GPU-X", "799.00", 2)

	rec := app.do(t, http.MethodPost, "/api/orders", app.tokens["alice"], orderBody(item(gpu, 2)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order orderhttpmapper.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.NotNil(t, order.Payment)
	assert.Equal(t, "Pending", order.Payment.Status)
	assert.True(t, order.Payment.Amount.Equal(decimal.RequireFromString("1598.00")))
	path := fmt.Sprintf("/api/payments/%d", order.Payment.ID)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, path, app.tokens["alice"], nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, path, app.tokens["bob"], nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/payments/999", app.adminTok, nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/payments", app.tokens["alice"], nil).Code)

	for _, status := range []string{"completed", "Refunded", ""} {
		rec = app.do(t, http.MethodPut, path+"/status", app.adminTok, map[string]string{"status": status})
		assert.Equal(t, http.StatusBadRequest, rec.Code, status)
	}
	rec = app.do(t, http.MethodPut, path+"/status", app.tokens["alice"], map[string]string{"status": "Completed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPut, path+"/status", app.adminTok, map[string]string{"status": "Completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var payment orderhttpmapper.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payment))
	assert.Equal(t, "Completed", payment.Status)
	assert.NotNil(t, payment.PaidAt)

	rec = app.do(t, http.MethodPut, path+"/status", app.adminTok, map[string]string{"status": "Failed"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/payments", app.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []orderhttpmapper.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, order.ID, all[0].OrderID)
}

func TestReviewRoutes(t *testing.T) {
	app := newTestApp(t, nil)
	ssd := app.seedProduct(t, "SSD-1T", "89.99", 3)
	reviewsPath := fmt.Sprintf("/api/products/%d/reviews", ssd)

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/products/999/reviews", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/api/reviews", "", map[string]any{"productId": ssd, "rating": 5}).Code)

	for _, body := range []any{
		map[string]any{"productId": ssd, "rating": 6},
		map[string]any{"productId": ssd, "rating": 0},
		map[string]any{"productId": ssd},
		map[string]any{"rating": 3},
		`{"productId":1,"rating":3,"verified":true}`,
	} {
		rec := app.do(t, http.MethodPost, "/api/reviews", app.tokens["alice"], body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%v", body)
	}
	rec := app.do(t, http.MethodPost, "/api/reviews", app.tokens["alice"], map[string]any{"productId": 999, "rating": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/reviews", app.tokens["alice"], map[string]any{"productId": ssd, "rating": 4, "comment": "fast"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var review reviewhttpmapper.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &review))
	assert.Equal(t, app.ids["alice"], review.UserID)
	path := fmt.Sprintf("/api/reviews/%d", review.ID)

	rec = app.do(t, http.MethodGet, reviewsPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []reviewhttpmapper.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "fast", list[0].Comment)

	rec = app.do(t, http.MethodPut, path, app.tokens["bob"], map[string]any{"rating": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apierrors.TypeForbidden, decodeProblem(t, rec).Type)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPut, path, app.tokens["alice"], map[string]any{"rating": 7}).Code)

	rec = app.do(t, http.MethodPut, path, app.tokens["alice"], map[string]any{"rating": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &review))
	assert.Equal(t, 2, review.Rating)
	assert.Equal(t, "fast", review.Comment)

	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodDelete, path, app.tokens["bob"], nil).Code)
	assert.Equal(t, http.StatusNoContent, app.do(t, http.MethodDelete, path, app.adminTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, path, app.tokens["alice"], nil).Code)
}
