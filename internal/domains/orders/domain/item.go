package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Item is one requested product at checkout. Price is the client's quote; the
// catalog price always wins and a zero Price means no quote was sent.
type Item struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// AggregateItems validates items and merges repeated products into one entry,
// keeping first-seen order.
func AggregateItems(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	merged := make([]Item, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, it := range items {
		if it.ProductID <= 0 {
			return nil, ErrInvalidProductID
		}
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		pos, seen := index[it.ProductID]
		if !seen {
			index[it.ProductID] = len(merged)
			merged = append(merged, it)
			continue
		}
		existing := &merged[pos]
		if existing.Price.IsZero() {
			existing.Price = it.Price
		}
		existing.Quantity += it.Quantity
	}
	return merged, nil
}

// ProductIDs returns the distinct product ids in ascending order, the order
// in which rows are locked.
func ProductIDs(items []Item) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
