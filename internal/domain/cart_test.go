package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineFromProduct_UsesDiscountPriceWhenLower(t *testing.T) {
	p := Product{
		ID:            "prod-1",
		Name:          "Paracetamol 500mg",
		Price:         20,
		DiscountPrice: 15,
		Stock:         10,
		Images:        []string{"https://cdn.example.com/paracetamol.jpg"},
		SKU:           "PARA-500",
	}

	line, err := NewLineFromProduct(p, 2)
	require.NoError(t, err)

	assert.Equal(t, 15.0, line.UnitPrice)
	assert.Equal(t, 20.0, line.ListPrice)
	assert.Equal(t, "https://cdn.example.com/paracetamol.jpg", line.ImageURL)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 10, line.StockHint)
	assert.Equal(t, "PARA-500", line.SKU)
}

func TestNewLineFromProduct_IgnoresDiscountNotLower(t *testing.T) {
	p := Product{ID: "prod-1", Name: "Ibuprofen", Price: 20, DiscountPrice: 25, Stock: 5}

	line, err := NewLineFromProduct(p, 1)
	require.NoError(t, err)
	assert.Equal(t, 20.0, line.UnitPrice)
}

func TestNewLineFromProduct_PlaceholderImage(t *testing.T) {
	p := Product{ID: "prod-1", Name: "Ibuprofen", Price: 12, Stock: 5}

	line, err := NewLineFromProduct(p, 1)
	require.NoError(t, err)
	assert.Equal(t, PlaceholderImage, line.ImageURL)
}

func TestNewLineFromProduct_RejectsMalformedInput(t *testing.T) {
	_, err := NewLineFromProduct(Product{Price: 10}, 1)
	assert.ErrorIs(t, err, ErrMissingProductID)

	_, err = NewLineFromProduct(Product{ID: "p", Price: 0}, 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = NewLineFromProduct(Product{ID: "p", Price: 10}, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewLineFromProduct(Product{ID: "p", Price: 10}, -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCart_AddLineKeepsOneLinePerProduct(t *testing.T) {
	cart := NewCart(nil)

	for i := 0; i < 5; i++ {
		line, err := NewLineFromProduct(Product{ID: "A", Name: "Vitamin C", Price: 10, Stock: 50}, 1)
		require.NoError(t, err)
		cart.AddLine(line)
	}

	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Quantity("A"))
}

func TestCart_MergeKeepsFirstAddPrice(t *testing.T) {
	cart := NewCart(nil)

	first, err := NewLineFromProduct(Product{ID: "A", Name: "Syrup", Price: 20, Stock: 10}, 2)
	require.NoError(t, err)
	cart.AddLine(first)

	// The catalog now offers a discount; the existing line must not pick it up.
	second, err := NewLineFromProduct(Product{ID: "A", Name: "Syrup", Price: 20, DiscountPrice: 15, Stock: 8}, 3)
	require.NoError(t, err)
	cart.AddLine(second)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 20.0, cart.Items[0].UnitPrice)
	assert.Equal(t, 8, cart.Items[0].StockHint, "stock hint refreshes on merge")
}

func TestCart_BuyNowMergeScenario(t *testing.T) {
	line, err := NewLineFromProduct(Product{ID: "A", Name: "Tablets", Price: 20, Stock: 10}, 1)
	require.NoError(t, err)
	cart := NewCart([]CartLine{line})

	added, err := NewLineFromProduct(Product{ID: "A", Name: "Tablets", Price: 20, DiscountPrice: 15, Stock: 10}, 1)
	require.NoError(t, err)
	cart.AddLine(added)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 20.0, cart.Items[0].UnitPrice)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 40.0, cart.Total())
}

func TestCart_SetQuantityFloorRemoves(t *testing.T) {
	line, err := NewLineFromProduct(Product{ID: "P", Name: "Drops", Price: 5, Stock: 10}, 2)
	require.NoError(t, err)

	cart := NewCart([]CartLine{line})
	cart.SetQuantity("P", 0)
	assert.False(t, cart.Contains("P"))

	cart = NewCart([]CartLine{line})
	cart.SetQuantity("P", -1)
	assert.False(t, cart.Contains("P"))
}

func TestCart_SetQuantityUnknownProductIsNoop(t *testing.T) {
	cart := NewCart(nil)
	cart.SetQuantity("ghost", 3)
	assert.Empty(t, cart.Items)
}

func TestCart_RemoveAbsentIsNoop(t *testing.T) {
	cart := NewCart(nil)
	cart.Remove("ghost")
	assert.Empty(t, cart.Items)
}

func TestCart_TotalAndItemCount(t *testing.T) {
	cart := NewCart([]CartLine{
		{ProductID: "A", UnitPrice: 10, Quantity: 2},
		{ProductID: "B", UnitPrice: 5, Quantity: 3},
	})

	assert.Equal(t, 35.0, cart.Total())
	assert.Equal(t, 5, cart.ItemCount())
}

func TestCart_LinesReturnsCopy(t *testing.T) {
	cart := NewCart([]CartLine{{ProductID: "A", UnitPrice: 10, Quantity: 1}})

	lines := cart.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, cart.Quantity("A"))
}

func TestCart_Clear(t *testing.T) {
	cart := NewCart([]CartLine{
		{ProductID: "A", UnitPrice: 10, Quantity: 2},
		{ProductID: "B", UnitPrice: 5, Quantity: 3},
	})

	cart.Clear()
	assert.Equal(t, 0, cart.ItemCount())
	assert.Empty(t, cart.Items)
}
