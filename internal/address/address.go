package address

import (
	"strings"
	"time"
)

// ShippingInfo is where an order ships to. Every field is required at
// checkout.
type ShippingInfo struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Address is a saved ShippingInfo belonging to one user.
type Address struct {
	ID     string `json:"addressId"`
	UserID string `json:"userId"`
	Label  string `json:"label"`
	ShippingInfo
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// shippingKeys lists the accepted key names per field, first match wins.
var shippingKeys = []struct {
	field string
	keys  []string
}{
	{"name", []string{"name", "fullName"}},
	{"phone", []string{"phone", "phoneNumber"}},
	{"address", []string{"address", "street", "addressLine1"}},
	{"city", []string{"city"}},
	{"postalCode", []string{"postalCode", "zip", "zipCode"}},
	{"country", []string{"country"}},
}

// NormalizeShipping reads a shipping form whose fields may arrive under
// several key names. Values are trimmed; the first non-blank key wins.
func NormalizeShipping(fields map[string]any) ShippingInfo {
	pick := func(keys []string) string {
		for _, k := range keys {
			if s, ok := fields[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}

	var info ShippingInfo
	for _, sk := range shippingKeys {
		v := pick(sk.keys)
		switch sk.field {
		case "name":
			info.Name = v
		case "phone":
			info.Phone = v
		case "address":
			info.Address = v
		case "city":
			info.City = v
		case "postalCode":
			info.PostalCode = v
		case "country":
			info.Country = v
		}
	}
	return info
}

// Missing returns a message per blank field, keyed by JSON name.
func (s ShippingInfo) Missing() map[string]string {
	out := map[string]string{}
	for field, v := range map[string]string{
		"name":       s.Name,
		"phone":      s.Phone,
		"address":    s.Address,
		"city":       s.City,
		"postalCode": s.PostalCode,
		"country":    s.Country,
	} {
		if strings.TrimSpace(v) == "" {
			out[field] = field + " is required"
		}
	}
	return out
}
