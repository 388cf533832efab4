package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/marketplace-backend/internal/address"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending        Status = "pending"
	StatusAccepted       Status = "accepted"
	StatusProcessing     Status = "processing"
	StatusShipped        Status = "shipped"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusRejected       Status = "rejected"
	StatusCancelled      Status = "cancelled"
)

// steps maps each status to its progress step. Terminal failures are 0.
var steps = map[Status]int{
	StatusPending:        1,
	StatusAccepted:       2,
	StatusProcessing:     3,
	StatusShipped:        4,
	StatusOutForDelivery: 5,
	StatusDelivered:      6,
	StatusRejected:       0,
	StatusCancelled:      0,
}

// Milestones are the forward statuses shown on the tracking page.
var Milestones = []Status{
	StatusPending,
	StatusAccepted,
	StatusProcessing,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
}

func (s Status) Valid() bool {
	_, ok := steps[s]
	return ok
}

// Step returns the progress step of s, or 0 for unknown statuses.
func (s Status) Step() int {
	return steps[s]
}

// NormalizeStatus lower-cases raw and folds spaces and dashes into
// underscores, so "Out for delivery" and "out-for-delivery" compare equal
// to out_for_delivery.
func NormalizeStatus(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return Status(s)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment is a manual payment reference an admin later verifies.
type Payment struct {
	PaymentMethod string        `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	TransactionID string        `json:"transactionId"`
}

// Item is an order line. Lines are fixed once the order exists.
type Item struct {
	ProductID    string          `json:"productId"`
	SellerID     string          `json:"sellerId"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Image        string          `json:"image,omitempty"`
	LocalImageID string          `json:"localImageId,omitempty"`

	// Filled by views, never stored.
	Category      string `json:"category,omitempty"`
	ResolvedImage string `json:"resolvedImage,omitempty"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// HistoryEntry records one status change.
type HistoryEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedBy string    `json:"updatedBy"`
}

type Order struct {
	ID            string               `json:"id"`
	UserID        string               `json:"userId"`
	Items         []Item               `json:"items"`
	Total         decimal.Decimal      `json:"total"`
	SellerIDs     []string             `json:"sellerIds"`
	ShippingInfo  address.ShippingInfo `json:"shippingInfo"`
	Payment       Payment              `json:"payment"`
	Status        Status               `json:"status"`
	StatusHistory []HistoryEntry       `json:"statusHistory"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// HasSeller reports whether sellerID sells any line of the order.
func (o Order) HasSeller(sellerID string) bool {
	for _, id := range o.SellerIDs {
		if id == sellerID {
			return true
		}
	}
	return false
}

// clone copies the slices so callers cannot mutate stored state.
func (o Order) clone() Order {
	o.Items = append([]Item(nil), o.Items...)
	o.SellerIDs = append([]string(nil), o.SellerIDs...)
	o.StatusHistory = append([]HistoryEntry(nil), o.StatusHistory...)
	return o
}
