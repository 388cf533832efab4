package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
	"github.com/wichananm65/marketplace-backend/internal/product"
)

var (
	ErrNotInCart        = apperr.New(apperr.KindNotFound, "product not in cart")
	ErrQuantityTooLarge = apperr.Validation("quantity is too large", map[string]string{"quantity": "quantity must be at most 9999"})
	errUnknownProduct   = apperr.New(apperr.KindNotFound, "product not found")
)

// Catalog looks up products for new cart lines.
type Catalog interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
}

// Service orchestrates cart operations. Carts are stored as whatever shape
// their producer wrote and normalized on every read.
type Service struct {
	repo     Repository
	catalog  Catalog
	resolver *ImageResolver
	log      logrus.FieldLogger

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

func NewService(repo Repository, catalog Catalog, resolver *ImageResolver, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, catalog: catalog, resolver: resolver, log: log}
}

// Items returns the normalized cart of a user.
func (s *Service) Items(ctx context.Context, userID string) ([]Item, error) {
	raw, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Normalize(raw)
}

// View returns the cart with resolved images and a subtotal.
func (s *Service) View(ctx context.Context, userID string) (View, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return View{}, err
	}

	view := View{Items: make([]ViewItem, 0, len(items)), Subtotal: decimal.Zero}
	for _, it := range items {
		line := it.LineTotal()
		view.Items = append(view.Items, ViewItem{
			Item:          it,
			ResolvedImage: s.resolver.Resolve(ctx, it),
			LineTotal:     line,
		})
		view.Count += it.Quantity
		view.Subtotal = view.Subtotal.Add(line)
	}
	return view, nil
}

// Replace stores a client-held cart as-is after checking that it parses.
func (s *Service) Replace(ctx context.Context, userID string, raw json.RawMessage) error {
	if _, err := Entries(raw); err != nil {
		return err
	}
	return s.repo.Put(ctx, userID, raw)
}

// AddEntry merges a raw entry, adding its quantity to any existing line
// for the same product.
func (s *Service) AddEntry(ctx context.Context, userID string, entry map[string]any) error {
	return s.Add(ctx, userID, entry, Quantity(entry))
}

// Add changes the quantity of the line for fields' product by delta. A line
// that drops to zero or below is removed. New lines keep the caller's
// fields and get missing name, price and seller from the catalog.
func (s *Service) Add(ctx context.Context, userID string, fields map[string]any, delta int) error {
	pid := productID(fields)
	if pid == "" {
		return apperr.Validation("productId is required", map[string]string{"productId": "productId is required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	entries, err := Entries(raw)
	if err != nil {
		return err
	}

	idx := -1
	for i, e := range entries {
		if productID(e) == pid {
			idx = i
			break
		}
	}

	switch {
	case idx >= 0:
		qty := Quantity(entries[idx]) + delta
		if qty > MaxQuantity {
			return ErrQuantityTooLarge
		}
		if qty <= 0 {
			entries = append(entries[:idx], entries[idx+1:]...)
		} else {
			entries[idx][quantityKey(entries[idx])] = qty
		}
	case delta > MaxQuantity:
		return ErrQuantityTooLarge
	case delta > 0:
		entry, err := s.newEntry(ctx, pid, fields)
		if err != nil {
			return err
		}
		entry[quantityKey(entry)] = delta
		entries = append(entries, entry)
	default:
		return ErrNotInCart
	}
	return s.save(ctx, userID, entries)
}

func (s *Service) Remove(ctx context.Context, userID, pid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	entries, err := Entries(raw)
	if err != nil {
		return err
	}
	for i, e := range entries {
		if productID(e) == pid {
			return s.save(ctx, userID, append(entries[:i], entries[i+1:]...))
		}
	}
	return ErrNotInCart
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}

func (s *Service) newEntry(ctx context.Context, pid string, fields map[string]any) (map[string]any, error) {
	entry := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["productId"] = pid
	if s.catalog == nil {
		return entry, nil
	}

	p, err := s.catalog.GetByID(ctx, pid)
	if errors.Is(err, product.ErrNotFound) {
		return nil, errUnknownProduct
	}
	if err != nil {
		return nil, err
	}
	if str(entry["name"]) == "" {
		entry["name"] = p.Name
	}
	if _, ok := entry["price"]; !ok {
		entry["price"] = p.Price.String()
	}
	if str(entry["sellerId"]) == "" {
		entry["sellerId"] = p.SellerID
	}
	return entry, nil
}

func (s *Service) save(ctx context.Context, userID string, entries []map[string]any) error {
	if len(entries) == 0 {
		return s.repo.Clear(ctx, userID)
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.repo.Put(ctx, userID, raw)
}

// quantityKey is the key an entry already uses for its quantity.
func quantityKey(entry map[string]any) string {
	for _, k := range quantityKeys {
		if _, ok := entry[k]; ok {
			return k
		}
	}
	return quantityKeys[0]
}
