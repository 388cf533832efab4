package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

// quantityKeys are read in order; the first one present wins.
var quantityKeys = []string{"quantity", "qty", "count"}

// MaxQuantity is the largest quantity one line may hold.
const MaxQuantity = 9999

var errCartShape = apperr.Validation("cart must be an array of items or an object keyed by product id", nil)

// Entries flattens a stored or submitted cart into raw item objects. The
// cart may be an array of objects or an object keyed by product id whose
// values are item objects or bare quantities. Map entries come back sorted
// by key and get productId filled from the key when they lack one.
func Entries(raw []byte) ([]map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errCartShape, err)
	}

	switch v := doc.(type) {
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, el := range v {
			if obj, ok := el.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make([]map[string]any, 0, len(v))
		for _, k := range keys {
			switch val := v[k].(type) {
			case map[string]any:
				if productID(val) == "" {
					val["productId"] = k
				}
				out = append(out, val)
			case json.Number, string:
				out = append(out, map[string]any{"productId": k, "qty": val})
			}
		}
		return out, nil
	default:
		return nil, errCartShape
	}
}

// Normalize turns any accepted cart shape into items.
func Normalize(raw []byte) ([]Item, error) {
	entries, err := Entries(raw)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, ItemFromFields(e))
	}
	return items, nil
}

// ItemFromFields reads one raw item object.
func ItemFromFields(fields map[string]any) Item {
	return Item{
		ProductID:    productID(fields),
		SellerID:     str(fields["sellerId"]),
		Name:         str(fields["name"]),
		Price:        price(fields["price"]),
		Quantity:     Quantity(fields),
		DisplayImage: str(fields["displayImage"]),
		ImageURL:     str(fields["imageUrl"]),
		Image:        str(fields["image"]),
		LocalImageID: str(fields["localImageId"]),
	}
}

// Quantity reads the first present of quantity, qty and count. Numeric
// values and numeric strings are truncated toward zero and held within
// the int32 range. Anything else counts as 1, and the result is never
// below 1. Values above MaxQuantity are kept so callers can reject them.
func Quantity(fields map[string]any) int {
	for _, k := range quantityKeys {
		v, ok := fields[k]
		if !ok {
			continue
		}
		n, ok := number(v)
		if !ok {
			return 1
		}
		return max(n, 1)
	}
	return 1
}

func number(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	f = math.Max(math.Min(math.Trunc(f), math.MaxInt32), math.MinInt32)
	return int(f), true
}

func productID(fields map[string]any) string {
	if id := str(fields["productId"]); id != "" {
		return id
	}
	return str(fields["id"])
}

func str(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	}
	return ""
}

func price(v any) decimal.Decimal {
	switch p := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(p.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(p)); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(p)
	case int:
		return decimal.NewFromInt(int64(p))
	}
	return decimal.Zero
}
