//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "storefront-api"
	ConsumerName = "storefront-web"

	StateCatalogBaseline = "catalog has one GPU with 5 in stock"
	StateProductMissing  = "no product with id 404"
	StateLowStock        = "catalog has one GPU with 1 in stock"
	StateOrderExists     = "pact-customer has placed order 1"
	StateNoOrders        = "no orders exist"
)

const (
	// Memory adapters hand out ids from 1, so the first seeded rows are stable.
	ExistingProductID int64 = 1
	MissingProductID  int64 = 404
	ExistingOrderID   int64 = 1
	MissingOrderID    int64 = 999

	CustomerToken = "pact-customer-token"
	StrangerToken = "pact-stranger-token"

	ProductName  = "Pact GPU"
	ProductPrice = "250"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file written by the storefront web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// PlaceOrderPayload is the checkout body the web client sends for qty GPUs.
func PlaceOrderPayload(qty int, total string) map[string]any {
	return map[string]any{
		"totalAmount":     total,
		"shippingAddress": "1 Contract Way",
		"paymentMethod":   "COD",
		"phone":           "+15550100",
		"fullName":        "Pact Customer",
		"items": []map[string]any{
			{"productId": ExistingProductID, "quantity": qty, "price": ProductPrice},
		},
	}
}

func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
