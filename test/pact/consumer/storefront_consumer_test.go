//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/computerstore/storefront-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type productPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

type orderPayload struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	TotalAmount string `json:"totalAmount"`
	Status      string `json:"status"`
	Items       []struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	} `json:"items"`
}

type problemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail"`
	Extensions map[string]any `json:"extensions"`
}

type apiError struct {
	status  int
	problem problemDetail
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.problem.Title, e.problem.Detail, e.status)
}

func statusOf(err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.status
	}
	return 0
}

func TestStorefrontWebContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemContentType := matchers.S("application/problem+json")
	customerAuth := matchers.S("Bearer " + pacttest.CustomerToken)
	strangerAuth := matchers.S("Bearer " + pacttest.StrangerToken)

	productMatcher := matchers.Map{
		"id":     matchers.Like(pacttest.ExistingProductID),
		"name":   matchers.Like(pacttest.ProductName),
		"price":  matchers.Like(pacttest.ProductPrice),
		"stock":  matchers.Like(5),
		"images": matchers.ArrayMinLike("/img/pact-gpu.png", 1),
	}
	orderMatcher := matchers.Map{
		"id":          matchers.Like(pacttest.ExistingOrderID),
		"userId":      matchers.Like(1),
		"totalAmount": matchers.Like("500"),
		"status":      matchers.Term("Pending", "Pending|Processing|Shipped|Delivered|Cancelled"),
		"items": matchers.ArrayMinLike(matchers.Map{
			"productId":   matchers.Like(pacttest.ExistingProductID),
			"productName": matchers.Like(pacttest.ProductName),
			"quantity":    matchers.Like(2),
			"price":       matchers.Like(pacttest.ProductPrice),
		}, 1),
	}
	problemMatcher := func(status int, problemType string) matchers.Map {
		return matchers.Map{
			"type":   matchers.S(problemType),
			"title":  matchers.Like("Problem"),
			"status": matchers.Like(status),
		}
	}

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a request for a product").
		WithRequest("GET", fmt.Sprintf("/api/products/%d", pacttest.ExistingProductID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(productMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateProductMissing).
		UponReceiving("a request for a missing product").
		WithRequest("GET", fmt.Sprintf("/api/products/%d", pacttest.MissingProductID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(problemMatcher(http.StatusNotFound, "/problems/not-found"))
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a checkout of two GPUs").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", customerAuth)
			b.JSONBody(pacttest.PlaceOrderPayload(2, "500"))
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateLowStock).
		UponReceiving("a checkout for more GPUs than are in stock").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", customerAuth)
			b.JSONBody(pacttest.PlaceOrderPayload(3, "750"))
		}).
		WillRespondWith(http.StatusBadRequest, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/business-rule"),
				"title":  matchers.Like("Business Rule Violation"),
				"status": matchers.Like(http.StatusBadRequest),
				"detail": matchers.Like(fmt.Sprintf("product %q only has 1 left in stock", pacttest.ProductName)),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderExists).
		UponReceiving("the owner fetching their order").
		WithRequest("GET", fmt.Sprintf("/api/orders/%d", pacttest.ExistingOrderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", customerAuth)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderExists).
		UponReceiving("another customer fetching someone else's order").
		WithRequest("GET", fmt.Sprintf("/api/orders/%d", pacttest.ExistingOrderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", strangerAuth)
		}).
		WillRespondWith(http.StatusForbidden, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(problemMatcher(http.StatusForbidden, "/problems/forbidden"))
		})

	pact.AddInteraction().
		Given(pacttest.StateNoOrders).
		UponReceiving("a request for a missing order").
		WithRequest("GET", fmt.Sprintf("/api/orders/%d", pacttest.MissingOrderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", customerAuth)
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(problemMatcher(http.StatusNotFound, "/problems/not-found"))
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newStorefrontClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var product productPayload
		if err := client.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", pacttest.ExistingProductID), "", nil, &product); err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if product.ID != pacttest.ExistingProductID {
			return fmt.Errorf("expected product %d, got %+v", pacttest.ExistingProductID, product)
		}
		err := client.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", pacttest.MissingProductID), "", nil, nil)
		if statusOf(err) != http.StatusNotFound {
			return fmt.Errorf("expected 404 for missing product, got %v", err)
		}

		var order orderPayload
		if err := client.do(ctx, http.MethodPost, "/api/orders", pacttest.CustomerToken, pacttest.PlaceOrderPayload(2, "500"), &order); err != nil {
			return fmt.Errorf("place order: %w", err)
		}
		if order.ID == 0 || order.Status != "Pending" || len(order.Items) == 0 {
			return fmt.Errorf("unexpected order %+v", order)
		}
		err = client.do(ctx, http.MethodPost, "/api/orders", pacttest.CustomerToken, pacttest.PlaceOrderPayload(3, "750"), nil)
		if statusOf(err) != http.StatusBadRequest {
			return fmt.Errorf("expected 400 for short stock, got %v", err)
		}

		if err := client.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", pacttest.ExistingOrderID), pacttest.CustomerToken, nil, &order); err != nil {
			return fmt.Errorf("get own order: %w", err)
		}
		err = client.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", pacttest.ExistingOrderID), pacttest.StrangerToken, nil, nil)
		if statusOf(err) != http.StatusForbidden {
			return fmt.Errorf("expected 403 for a stranger, got %v", err)
		}
		err = client.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", pacttest.MissingOrderID), pacttest.CustomerToken, nil, nil)
		if statusOf(err) != http.StatusNotFound {
			return fmt.Errorf("expected 404 for missing order, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type storefrontClient struct {
	baseURL    string
	httpClient *http.Client
}

func newStorefrontClient(config pactconsumer.MockServerConfig) *storefrontClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &storefrontClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *storefrontClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var problem problemDetail
		_ = json.NewDecoder(res.Body).Decode(&problem)
		return apiError{status: res.StatusCode, problem: problem}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
