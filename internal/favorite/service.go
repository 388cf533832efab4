package favorite

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
	"github.com/wichananm65/marketplace-backend/internal/product"
)

// lookupChunkSize bounds the number of ids sent in one product query.
const lookupChunkSize = 10

var errMissingProduct = apperr.New(apperr.KindNotFound, "product not found")

// Catalog resolves product ids to products.
type Catalog interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]product.Product, error)
}

// CartWriter merges a raw entry into a user's cart.
type CartWriter interface {
	AddEntry(ctx context.Context, userID string, entry map[string]any) error
}

type Service struct {
	repo    Repository
	catalog Catalog
	cart    CartWriter
	log     logrus.FieldLogger
}

func NewService(repo Repository, catalog Catalog, cart CartWriter, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, catalog: catalog, cart: cart, log: log}
}

func (s *Service) Add(ctx context.Context, userID, productID string) error {
	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return errMissingProduct
		}
		return err
	}
	return s.repo.Add(ctx, userID, productID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	return s.repo.Remove(ctx, userID, productID)
}

// List joins the wishlist against the catalog in chunks and keeps wishlist
// order. Ids whose product no longer exists are dropped.
func (s *Service) List(ctx context.Context, userID string) ([]product.Product, error) {
	ids, err := s.repo.ProductIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]product.Product, 0, len(ids))
	for _, chunk := range chunkIDs(ids, lookupChunkSize) {
		found, err := s.catalog.ListByIDs(ctx, chunk)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]product.Product, len(found))
		for _, p := range found {
			byID[p.ID] = p
		}
		for _, id := range chunk {
			if p, ok := byID[id]; ok {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// MoveToCart puts one unit in the cart and then drops the wishlist entry.
func (s *Service) MoveToCart(ctx context.Context, userID, productID string) error {
	ids, err := s.repo.ProductIDs(ctx, userID)
	if err != nil {
		return err
	}
	if !contains(ids, productID) {
		return ErrNotFavorite
	}
	if err := s.cart.AddEntry(ctx, userID, map[string]any{"productId": productID, "qty": 1}); err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"userId": userID, "productId": productID}).Debug("favorite moved to cart")
	return nil
}

func chunkIDs(ids []string, size int) [][]string {
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
