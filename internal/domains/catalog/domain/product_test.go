package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	p, err := NewProduct(1, "  GPU-X ", "fast", decimal.RequireFromString("499.999"), 2, []string{"", " a.png "})
	require.NoError(t, err)
	require.Equal(t, "GPU-X", p.Name)
	require.True(t, p.Price.Equal(decimal.RequireFromString("500.00")))
	require.Equal(t, []string{"a.png"}, p.Images)
	require.Equal(t, "a.png", p.PrimaryImage())
}

func TestNewProduct_Invariants(t *testing.T) {
	_, err := NewProduct(1, " ", "", decimal.Zero, 0, nil)
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = NewProduct(1, "SSD", "", decimal.NewFromInt(-1), 0, nil)
	require.ErrorIs(t, err, ErrNegativePrice)

	_, err = NewProduct(1, "SSD", "", decimal.NewFromInt(10), -3, nil)
	require.ErrorIs(t, err, ErrNegativeStock)
}

func TestProduct_CloneIsDeep(t *testing.T) {
	p, err := NewProduct(1, "RAM", "", decimal.NewFromInt(80), 5, []string{"ram.png"})
	require.NoError(t, err)
	clone := p.Clone()
	clone.Images[0] = "other.png"
	require.Equal(t, "ram.png", p.Images[0])
}

func TestNewCategory(t *testing.T) {
	_, err := NewCategory("", "")
	require.ErrorIs(t, err, ErrEmptyCategoryName)

	c, err := NewCategory("Graphics", " cards ")
	require.NoError(t, err)
	require.Equal(t, "cards", c.Description)
}
