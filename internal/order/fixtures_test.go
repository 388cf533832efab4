package order

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/address"
	"github.com/wichananm65/marketplace-backend/internal/cart"
	"github.com/wichananm65/marketplace-backend/internal/product"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

var (
	buyer1  = user.Session{UserID: "b1", Role: user.RoleBuyer}
	buyer2  = user.Session{UserID: "b2", Role: user.RoleBuyer}
	seller1 = user.Session{UserID: "s1", Role: user.RoleSeller}
	seller2 = user.Session{UserID: "s2", Role: user.RoleSeller}
	admin   = user.Session{UserID: "a1", Role: user.RoleAdmin}

	fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(ctx context.Context, e Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recordingNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc       *Service
	repo      *InMemoryRepository
	carts     *cart.Service
	cartRepo  *cart.InMemoryRepository
	addresses *address.Service
	users     *user.Service
	notifier  *recordingNotifier
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testProducts() []product.Product {
	return []product.Product{
		{ID: "p1", Name: "Ball", Price: decimal.NewFromInt(100), SellerID: "s1", Category: "toys", ImageData: "https://cdn.example.com/ball.png"},
		{ID: "p2", Name: "Rope", Price: decimal.RequireFromString("25.50"), SellerID: "s2", Category: "toys"},
		{ID: "p3", Name: "Kibble", Price: decimal.RequireFromString("12.25"), SellerID: "s1", Category: "food"},
	}
}

func testUsers() []user.User {
	return []user.User{
		{ID: "b1", Name: "Ann Buyer", Email: "ann@example.com", Role: user.RoleBuyer, Approved: true},
		{ID: "b2", Name: "Bo", Email: "bo@example.com", Role: user.RoleBuyer, Approved: true},
		{ID: "s1", Name: "Sam", Email: "sam@example.com", Role: user.RoleSeller, ShopName: "Paws Shop", Approved: true},
		{ID: "s2", Name: "Sue", Email: "sue@example.com", Role: user.RoleSeller, ShopName: "Rope World", Approved: true},
		{ID: "a1", Name: "Root", Email: "root@example.com", Role: user.RoleAdmin, Approved: true},
	}
}

func newFixture(t *testing.T, seed ...Order) *fixture {
	t.Helper()
	log := quietLog()

	products := product.NewService(product.NewInMemoryRepository(testProducts()), nil, log)
	users := user.NewService(user.NewInMemoryRepository(testUsers()), user.TokenConfig{Secret: []byte("x")}, log)
	resolver := cart.NewImageResolver(nil, products, "/ph.png", log)
	cartRepo := cart.NewInMemoryRepository()
	carts := cart.NewService(cartRepo, products, resolver, log)
	addresses := address.NewService(address.NewInMemoryRepository(), log)
	notifier := &recordingNotifier{}
	repo := NewInMemoryRepository(seed...)

	svc := NewService(repo, Deps{
		Carts:     carts,
		Catalog:   products,
		Addresses: addresses,
		Users:     users,
		Images:    resolver,
		Notifier:  notifier,
		PageSize:  2,
	}, log)
	svc.now = func() time.Time { return fixedNow }

	return &fixture{
		svc:       svc,
		repo:      repo,
		carts:     carts,
		cartRepo:  cartRepo,
		addresses: addresses,
		users:     users,
		notifier:  notifier,
	}
}

func shippingForm() map[string]any {
	return map[string]any{
		"name":       "Ann Buyer",
		"phone":      "0812345678",
		"address":    "1 Rama IV Rd",
		"city":       "Bangkok",
		"postalCode": "10330",
		"country":    "TH",
	}
}

// seedOrder builds a stored order without going through checkout.
func seedOrder(id, buyerID string, status Status, created time.Time, items ...Item) Order {
	return Order{
		ID:            id,
		UserID:        buyerID,
		Items:         items,
		Total:         Total(items),
		SellerIDs:     SellerIDs(items),
		ShippingInfo:  address.ShippingInfo{Name: "Ship " + buyerID, Phone: "1", Address: "a", City: "c", PostalCode: "p", Country: "TH"},
		Payment:       Payment{PaymentMethod: "manual", PaymentStatus: PaymentPending, TransactionID: "TX-" + id + "-0000"},
		Status:        status,
		StatusHistory: []HistoryEntry{{Status: StatusPending, Timestamp: created, UpdatedBy: buyerID}},
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func line(productID, sellerID, name, price string, qty int) Item {
	return Item{ProductID: productID, SellerID: sellerID, Name: name, Price: decimal.RequireFromString(price), Quantity: qty}
}
