package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry owned by one seller.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	SellerID    string          `json:"sellerId"`
	ImageData   string          `json:"imageData,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	CategoryID string
	SellerID   string
}

func (f Filter) match(p Product) bool {
	if f.CategoryID != "" && p.Category != f.CategoryID {
		return false
	}
	if f.SellerID != "" && p.SellerID != f.SellerID {
		return false
	}
	return true
}
