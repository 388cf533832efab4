package cart

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

func TestNormalize_QuantityAliases(t *testing.T) {
	items, err := Normalize([]byte(`[
		{"productId":"a","quantity":2},
		{"productId":"b","qty":3},
		{"productId":"c","count":0},
		{"productId":"d"}
	]`))
	require.NoError(t, err)
	require.Len(t, items, 4)

	got := make([]int, 0, len(items))
	for _, it := range items {
		got = append(got, it.Quantity)
	}
	assert.Equal(t, []int{2, 3, 1, 1}, got)
}

func TestQuantity(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		want   int
	}{
		{"first key wins", map[string]any{"quantity": 4, "qty": 9}, 4},
		{"truncates", map[string]any{"qty": 2.9}, 2},
		{"numeric string", map[string]any{"count": " 5 "}, 5},
		{"negative floors at one", map[string]any{"quantity": -3}, 1},
		{"garbage counts as one", map[string]any{"quantity": "lots"}, 1},
		{"boolean counts as one", map[string]any{"qty": true}, 1},
		{"missing", map[string]any{}, 1},
		{"huge number is kept", map[string]any{"quantity": 3000000000.0}, math.MaxInt32},
		{"huge json number is kept", map[string]any{"qty": json.Number("3000000000")}, math.MaxInt32},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Quantity(tc.fields))
		})
	}
}

func TestNormalize_MapShape(t *testing.T) {
	items, err := Normalize([]byte(`{
		"p2": {"name":"Rope","price":"3.50","quantity":2},
		"p1": 3,
		"p3": "2"
	}`))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "p2", items[1].ProductID)
	assert.Equal(t, "Rope", items[1].Name)
	assert.True(t, decimal.RequireFromString("3.50").Equal(items[1].Price))
	assert.Equal(t, 2, items[1].Quantity)
	assert.Equal(t, "p3", items[2].ProductID)
	assert.Equal(t, 2, items[2].Quantity)
}

func TestNormalize_LegacyIDField(t *testing.T) {
	items, err := Normalize([]byte(`[{"id":"p9","price":12,"qty":"1.7"}, "junk"]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p9", items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(12).Equal(items[0].Price))
}

func TestNormalize_EmptyAndInvalid(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		items, err := Normalize([]byte(raw))
		require.NoError(t, err)
		assert.Empty(t, items)
	}

	_, err := Normalize([]byte(`42`))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = Normalize([]byte(`{"p1":`))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestItem_LineTotal(t *testing.T) {
	it := Item{Price: decimal.RequireFromString("19.99"), Quantity: 3}
	assert.Equal(t, "59.97", it.LineTotal().StringFixed(2))
}
