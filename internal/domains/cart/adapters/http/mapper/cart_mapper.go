package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	cartdomain "github.com/computerstore/storefront-api/internal/domains/cart/domain"
	cartports "github.com/computerstore/storefront-api/internal/domains/cart/ports"
)

// Item is the JSON shape of a stored cart item.
type Item struct {
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// Line is a cart item with product details.
type Line struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage,omitempty"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Stock        int             `json:"stock"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	AddedAt      time.Time       `json:"addedAt"`
}

// Cart is the JSON shape of GET /cart.
type Cart struct {
	Items []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// FromDomainItem converts a stored item.
func FromDomainItem(item *cartdomain.Item) Item {
	if item == nil {
		return Item{}
	}
	return Item{ProductID: item.ProductID, Quantity: item.Quantity, AddedAt: item.AddedAt}
}

// FromView converts a cart view.
func FromView(view *cartports.View) Cart {
	if view == nil {
		return Cart{Items: []Line{}, Total: decimal.Zero}
	}
	lines := make([]Line, 0, len(view.Lines))
	for _, l := range view.Lines {
		lines = append(lines, Line{
			ProductID:    l.Product.ID,
			ProductName:  l.Product.Name,
			ProductImage: l.Product.Image,
			UnitPrice:    l.Product.Price,
			Stock:        l.Product.Stock,
			Quantity:     l.Item.Quantity,
			Subtotal:     l.Subtotal,
			AddedAt:      l.Item.AddedAt,
		})
	}
	return Cart{Items: lines, Total: view.Total}
}
