package order

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/address"
	"github.com/wichananm65/marketplace-backend/internal/cart"
	"github.com/wichananm65/marketplace-backend/internal/product"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

// maxPageSize caps the admin console page size.
const maxPageSize = 100

// CartStore is the buyer's server-side cart.
type CartStore interface {
	Items(ctx context.Context, userID string) ([]cart.Item, error)
	Clear(ctx context.Context, userID string) error
}

// Catalog resolves products for checkout and the seller view.
type Catalog interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
	List(ctx context.Context, f product.Filter) ([]product.Product, error)
}

// AddressBook resolves a saved address at checkout.
type AddressBook interface {
	Get(ctx context.Context, userID, id string) (address.Address, error)
}

// Directory looks up buyer and seller profiles for the admin console.
type Directory interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// Deps are the collaborators of Service. Carts, Addresses, Users, Images
// and Notifier may be nil.
type Deps struct {
	Carts     CartStore
	Catalog   Catalog
	Addresses AddressBook
	Users     Directory
	Images    *cart.ImageResolver
	Hub       *Hub
	Notifier  Notifier
	PageSize  int
}

// Service implements checkout, status changes and the role views over
// orders.
type Service struct {
	repo      Repository
	carts     CartStore
	catalog   Catalog
	addresses AddressBook
	users     Directory
	images    *cart.ImageResolver
	hub       *Hub
	notifier  Notifier
	pageSize  int
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewService(repo Repository, deps Deps, log logrus.FieldLogger) *Service {
	s := &Service{
		repo:      repo,
		carts:     deps.Carts,
		catalog:   deps.Catalog,
		addresses: deps.Addresses,
		users:     deps.Users,
		images:    deps.Images,
		hub:       deps.Hub,
		notifier:  deps.Notifier,
		pageSize:  deps.PageSize,
		log:       log,
		now:       time.Now,
	}
	if s.hub == nil {
		s.hub = NewHub()
	}
	if s.pageSize <= 0 {
		s.pageSize = 20
	}
	if s.pageSize > maxPageSize {
		s.pageSize = maxPageSize
	}
	return s
}

// Hub exposes live order updates.
func (s *Service) Hub() *Hub {
	return s.hub
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete hard-deletes an order. Admin only.
func (s *Service) Delete(ctx context.Context, id string, actor user.Session) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"orderId": id, "actor": actor.UserID}).Info("order deleted")
	s.publish(ctx, EventDeleted, o, actor.UserID)
	return nil
}

// resolveImages fills ResolvedImage on each item through the shared
// resolver so every order view shows the same picture as the cart.
func (s *Service) resolveImages(ctx context.Context, items []Item) {
	if s.images == nil {
		return
	}
	for i := range items {
		items[i].ResolvedImage = s.images.Resolve(ctx, cart.Item{
			ProductID:    items[i].ProductID,
			Image:        items[i].Image,
			LocalImageID: items[i].LocalImageID,
		})
	}
}
