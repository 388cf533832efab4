package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/address"
	"github.com/wichananm65/marketplace-backend/internal/apperr"
	"github.com/wichananm65/marketplace-backend/internal/cart"
	"github.com/wichananm65/marketplace-backend/internal/media"
	"github.com/wichananm65/marketplace-backend/internal/product"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

const (
	minTransactionIDLen  = 8
	defaultPaymentMethod = "manual"
)

var (
	ErrEmptyCart     = apperr.Validation("your cart is empty", nil)
	ErrMissingSeller = apperr.New(apperr.KindValidation, "could not determine the seller of a cart item")
)

// CheckoutRequest is what the buyer submits. Cart is optional and falls
// back to the stored cart. AddressID, when set, replaces ShippingInfo.
type CheckoutRequest struct {
	Cart         json.RawMessage `json:"cart"`
	ShippingInfo map[string]any  `json:"shippingInfo"`
	AddressID    string          `json:"addressId"`
	Payment      PaymentInput    `json:"payment"`
}

type PaymentInput struct {
	PaymentMethod string `json:"paymentMethod"`
	TransactionID string `json:"transactionId"`
}

// PlaceOrder turns the buyer's cart into a pending order. Every item must
// resolve to a seller before anything is written; on success the stored
// cart is cleared.
func (s *Service) PlaceOrder(ctx context.Context, buyer user.Session, req CheckoutRequest) (Order, error) {
	cartItems, err := s.checkoutItems(ctx, buyer.UserID, req.Cart)
	if err != nil {
		return Order{}, err
	}
	if len(cartItems) == 0 {
		return Order{}, ErrEmptyCart
	}

	shipping, err := s.shippingInfo(ctx, buyer.UserID, req)
	if err != nil {
		return Order{}, err
	}

	payment, err := paymentFrom(req.Payment)
	if err != nil {
		return Order{}, err
	}

	items := make([]Item, 0, len(cartItems))
	for i, ci := range cartItems {
		it, err := s.resolveItem(ctx, i, ci)
		if err != nil {
			return Order{}, err
		}
		items = append(items, it)
	}

	now := s.now().UTC()
	o := Order{
		ID:           uuid.NewString(),
		UserID:       buyer.UserID,
		Items:        items,
		Total:        Total(items),
		SellerIDs:    SellerIDs(items),
		ShippingInfo: shipping,
		Payment:      payment,
		Status:       StatusPending,
		StatusHistory: []HistoryEntry{
			{Status: StatusPending, Timestamp: now, UpdatedBy: buyer.UserID},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return Order{}, err
	}

	if s.carts != nil {
		if err := s.carts.Clear(ctx, buyer.UserID); err != nil {
			s.log.WithError(err).WithField("userId", buyer.UserID).Warn("cart not cleared after checkout")
		}
	}

	s.log.WithFields(logrus.Fields{
		"orderId": created.ID,
		"userId":  buyer.UserID,
		"items":   len(created.Items),
		"total":   created.Total.StringFixed(2),
	}).Info("order placed")
	s.publish(ctx, EventCreated, created, buyer.UserID)
	return created, nil
}

func (s *Service) checkoutItems(ctx context.Context, userID string, raw json.RawMessage) ([]cart.Item, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		return cart.Normalize(trimmed)
	}
	if s.carts == nil {
		return nil, nil
	}
	return s.carts.Items(ctx, userID)
}

func (s *Service) shippingInfo(ctx context.Context, userID string, req CheckoutRequest) (address.ShippingInfo, error) {
	var info address.ShippingInfo
	if id := strings.TrimSpace(req.AddressID); id != "" && s.addresses != nil {
		a, err := s.addresses.Get(ctx, userID, id)
		if err != nil {
			return address.ShippingInfo{}, err
		}
		info = a.ShippingInfo
	} else {
		info = address.NormalizeShipping(req.ShippingInfo)
	}
	if missing := info.Missing(); len(missing) > 0 {
		return address.ShippingInfo{}, apperr.Validation("shipping information is incomplete", missing)
	}
	return info, nil
}

func paymentFrom(in PaymentInput) (Payment, error) {
	tx := strings.TrimSpace(in.TransactionID)
	if utf8.RuneCountInString(tx) < minTransactionIDLen {
		msg := fmt.Sprintf("transactionId must be at least %d characters", minTransactionIDLen)
		return Payment{}, apperr.Validation(msg, map[string]string{"transactionId": msg})
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = defaultPaymentMethod
	}
	return Payment{PaymentMethod: method, PaymentStatus: PaymentPending, TransactionID: tx}, nil
}

// resolveItem builds an order line from a cart line. Missing seller, name
// or price are read from the catalog; a line without a seller after that
// fails the checkout. Prices are rounded to cents so the stored total
// matches the stored lines.
func (s *Service) resolveItem(ctx context.Context, idx int, ci cart.Item) (Item, error) {
	it := Item{
		ProductID:    ci.ProductID,
		SellerID:     ci.SellerID,
		Name:         ci.Name,
		Price:        ci.Price,
		Quantity:     ci.Quantity,
		Image:        firstSafeImage(ci.DisplayImage, ci.ImageURL, ci.Image),
		LocalImageID: ci.LocalImageID,
	}

	needsLookup := it.SellerID == "" || it.Name == "" || it.Price.IsZero()
	if needsLookup && it.ProductID != "" && s.catalog != nil {
		p, err := s.catalog.GetByID(ctx, it.ProductID)
		switch {
		case errors.Is(err, product.ErrNotFound):
		case err != nil:
			return Item{}, err
		default:
			if it.SellerID == "" {
				it.SellerID = p.SellerID
			}
			if it.Name == "" {
				it.Name = p.Name
			}
			if it.Price.IsZero() {
				it.Price = p.Price
			}
		}
	}

	if err := validateLine(idx, it); err != nil {
		return Item{}, err
	}
	it.Price = it.Price.Round(2)

	if it.SellerID == "" {
		return Item{}, fmt.Errorf("%w: product %q", ErrMissingSeller, it.ProductID)
	}
	return it, nil
}

func validateLine(idx int, it Item) error {
	prefix := fmt.Sprintf("items[%d].", idx)
	errs := map[string]string{}
	if it.Price.IsNegative() {
		errs[prefix+"price"] = "price must be >= 0"
	}
	if it.Quantity > cart.MaxQuantity {
		errs[prefix+"quantity"] = fmt.Sprintf("quantity must be at most %d", cart.MaxQuantity)
	}
	if len(errs) > 0 {
		return apperr.Validation("invalid cart item", errs)
	}
	return nil
}

func firstSafeImage(candidates ...string) string {
	for _, c := range candidates {
		if media.SafeImageURL(c) {
			return strings.TrimSpace(c)
		}
	}
	return ""
}

// Total is the sum of price times quantity over items.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// SellerIDs returns the distinct sellers of items in first-seen order.
func SellerIDs(items []Item) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.SellerID]; ok {
			continue
		}
		seen[it.SellerID] = struct{}{}
		out = append(out, it.SellerID)
	}
	return out
}
