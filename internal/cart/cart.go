package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one normalized cart line.
type Item struct {
	ProductID    string          `json:"productId"`
	SellerID     string          `json:"sellerId,omitempty"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	DisplayImage string          `json:"displayImage,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	Image        string          `json:"image,omitempty"`
	LocalImageID string          `json:"localImageId,omitempty"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// View is the cart as returned to clients.
type View struct {
	Items    []ViewItem      `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type ViewItem struct {
	Item
	ResolvedImage string          `json:"resolvedImage"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
}
