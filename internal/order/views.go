package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/wichananm65/marketplace-backend/internal/product"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

// BuyerOrder is an order as listed to its buyer.
type BuyerOrder struct {
	Order
	CurrentStep int `json:"currentStep"`
}

// Milestone is one forward step on the tracking page.
type Milestone struct {
	Status    Status     `json:"status"`
	Step      int        `json:"step"`
	Reached   bool       `json:"reached"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
}

// Tracking is the detail view of one order.
type Tracking struct {
	Order
	CurrentStep int         `json:"currentStep"`
	Milestones  []Milestone `json:"milestones"`
}

func sortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// ListForBuyer returns the buyer's orders, newest first.
func (s *Service) ListForBuyer(ctx context.Context, userID string) ([]BuyerOrder, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)

	out := make([]BuyerOrder, 0, len(orders))
	for _, o := range orders {
		s.resolveImages(ctx, o.Items)
		out = append(out, BuyerOrder{Order: o, CurrentStep: o.Status.Step()})
	}
	return out, nil
}

// Track returns one order with its milestones. The buyer, any seller on
// the order and admins may track it.
func (s *Service) Track(ctx context.Context, orderID string, viewer user.Session) (Tracking, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return Tracking{}, err
	}
	if !canView(o, viewer) {
		return Tracking{}, ErrUnauthorized
	}
	s.resolveImages(ctx, o.Items)
	return BuildTracking(o), nil
}

func canView(o Order, viewer user.Session) bool {
	return viewer.IsAdmin() || o.UserID == viewer.UserID || o.HasSeller(viewer.UserID)
}

// BuildTracking matches every milestone to the first history entry with
// the same normalized status. A milestone at or below the current step is
// reached even when the history skipped it.
func BuildTracking(o Order) Tracking {
	current := o.Status.Step()
	t := Tracking{Order: o, CurrentStep: current, Milestones: make([]Milestone, 0, len(Milestones))}
	for _, status := range Milestones {
		m := Milestone{Status: status, Step: status.Step()}
		for _, h := range o.StatusHistory {
			if NormalizeStatus(string(h.Status)) == status {
				ts := h.Timestamp
				m.Timestamp = &ts
				m.UpdatedBy = h.UpdatedBy
				m.Reached = true
				break
			}
		}
		if current > 0 && m.Step <= current {
			m.Reached = true
		}
		t.Milestones = append(t.Milestones, m)
	}
	return t
}

// ListForSeller returns orders containing the seller's products, newest
// first. Items are enriched only from the seller's own catalog; lines from
// other shops keep what was stored at checkout.
func (s *Service) ListForSeller(ctx context.Context, sellerID string) ([]Order, error) {
	orders, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)

	own := map[string]product.Product{}
	if s.catalog != nil {
		products, err := s.catalog.List(ctx, product.Filter{SellerID: sellerID})
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			own[p.ID] = p
		}
	}

	for i := range orders {
		for j, it := range orders[i].Items {
			p, ok := own[it.ProductID]
			if !ok {
				continue
			}
			if p.Name != "" {
				it.Name = p.Name
			}
			it.Category = p.Category
			if it.Image == "" {
				it.Image = p.ImageData
			}
			orders[i].Items[j] = it
		}
		s.resolveImages(ctx, orders[i].Items)
	}
	return orders, nil
}

// Query filters the admin order console.
type Query struct {
	Search   string
	Status   string
	Seller   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// AdminOrder is an order joined with its buyer and seller profiles.
type AdminOrder struct {
	Order
	CustomerName  string   `json:"customerName"`
	CustomerEmail string   `json:"customerEmail"`
	SellerNames   []string `json:"sellerNames"`
}

// Page is one page of the admin console.
type Page struct {
	Orders     []AdminOrder `json:"orders"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`
}

// AdminList filters, sorts and paginates all orders.
func (s *Service) AdminList(ctx context.Context, q Query) (Page, error) {
	matched, err := s.AdminSearch(ctx, q)
	if err != nil {
		return Page{}, err
	}

	size := q.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	size = min(size, maxPageSize)
	page := max(q.Page, 1)

	start := min((page-1)*size, len(matched))
	end := min(start+size, len(matched))
	rows := matched[start:end]
	for i := range rows {
		s.resolveImages(ctx, rows[i].Items)
	}

	return Page{
		Orders:     rows,
		Total:      len(matched),
		Page:       page,
		PageSize:   size,
		TotalPages: (len(matched) + size - 1) / size,
	}, nil
}

// AdminSearch returns every order matching q, newest first, without
// pagination.
func (s *Service) AdminSearch(ctx context.Context, q Query) ([]AdminOrder, error) {
	if q.Status != "" && !Status(q.Status).Valid() {
		return nil, ErrInvalidStatus
	}

	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)

	profiles := newProfileCache(s)
	search := strings.ToLower(strings.TrimSpace(q.Search))
	seller := strings.ToLower(strings.TrimSpace(q.Seller))
	to := endOfDay(q.To)

	out := make([]AdminOrder, 0, len(orders))
	for _, o := range orders {
		if q.Status != "" && string(o.Status) != q.Status {
			continue
		}
		if !q.From.IsZero() && o.CreatedAt.Before(q.From) {
			continue
		}
		if !to.IsZero() && o.CreatedAt.After(to) {
			continue
		}

		row := AdminOrder{Order: o, SellerNames: make([]string, 0, len(o.SellerIDs))}
		buyer, _ := profiles.get(ctx, o.UserID)
		row.CustomerName = o.ShippingInfo.Name
		if row.CustomerName == "" {
			row.CustomerName = buyer.Name
		}
		row.CustomerEmail = buyer.Email

		for _, id := range o.SellerIDs {
			if p, ok := profiles.get(ctx, id); ok {
				row.SellerNames = append(row.SellerNames, p.DisplayName())
			}
		}

		if seller != "" && !matchesSeller(ctx, profiles, o.SellerIDs, seller) {
			continue
		}
		if search != "" && !matchesSearch(row, search) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// endOfDay moves a date filter to the last nanosecond of its day.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func matchesSearch(row AdminOrder, needle string) bool {
	fields := []string{row.ID, row.CustomerName, row.CustomerEmail}
	for _, it := range row.Items {
		fields = append(fields, it.Name)
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func matchesSeller(ctx context.Context, profiles *profileCache, sellerIDs []string, needle string) bool {
	for _, id := range sellerIDs {
		p, ok := profiles.get(ctx, id)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(p.ShopName), needle) || strings.Contains(strings.ToLower(p.Name), needle) {
			return true
		}
	}
	return false
}

// profileCache memoizes profile lookups for the duration of one query.
type profileCache struct {
	s     *Service
	users map[string]*user.User
}

func newProfileCache(s *Service) *profileCache {
	return &profileCache{s: s, users: map[string]*user.User{}}
}

func (c *profileCache) get(ctx context.Context, id string) (user.User, bool) {
	if u, ok := c.users[id]; ok {
		if u == nil {
			return user.User{}, false
		}
		return *u, true
	}
	if c.s.users == nil || id == "" {
		return user.User{}, false
	}

	u, err := c.s.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			c.s.log.WithError(err).WithField("userId", id).Warn("profile lookup failed")
		}
		c.users[id] = nil
		return user.User{}, false
	}
	c.users[id] = &u
	return u, true
}
