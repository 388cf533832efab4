package product

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
	"github.com/wichananm65/marketplace-backend/internal/media"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

var ErrNotOwner = apperr.New(apperr.KindAuthorization, "you can only change your own products")

// CategoryChecker confirms a category id exists.
type CategoryChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo       Repository
	categories CategoryChecker
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewService(repo Repository, categories CategoryChecker, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, categories: categories, log: log, now: time.Now}
}

// Input carries the writable product fields.
type Input struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	ImageData   string          `json:"imageData"`
	// SellerID lets an admin create a product on behalf of a seller.
	SellerID string `json:"sellerId"`
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]Product, error) {
	return s.repo.ListByIDs(ctx, ids)
}

// ImageFor returns the stored image of a product, or "" when it has none.
func (s *Service) ImageFor(ctx context.Context, productID string) (string, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return "", err
	}
	return p.ImageData, nil
}

func (s *Service) Create(ctx context.Context, actor user.Session, in Input) (Product, error) {
	sellerID := actor.UserID
	if actor.IsAdmin() && strings.TrimSpace(in.SellerID) != "" {
		sellerID = strings.TrimSpace(in.SellerID)
	}
	if err := s.validate(ctx, &in); err != nil {
		return Product{}, err
	}

	now := s.now().UTC()
	p := Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
		Category:    in.Category,
		SellerID:    sellerID,
		ImageData:   in.ImageData,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.log.WithFields(logrus.Fields{"productId": created.ID, "sellerId": sellerID}).Info("product created")
	return created, nil
}

func (s *Service) Update(ctx context.Context, actor user.Session, id string, in Input) (Product, error) {
	existing, err := s.owned(ctx, actor, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.validate(ctx, &in); err != nil {
		return Product{}, err
	}

	existing.Name = in.Name
	existing.Price = in.Price
	existing.Stock = in.Stock
	existing.Description = in.Description
	existing.Category = in.Category
	existing.ImageData = in.ImageData
	existing.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, existing)
}

func (s *Service) Delete(ctx context.Context, actor user.Session, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) owned(ctx context.Context, actor user.Session, id string) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !actor.IsAdmin() && p.SellerID != actor.UserID {
		return Product{}, ErrNotOwner
	}
	return p, nil
}

func (s *Service) validate(ctx context.Context, in *Input) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.ImageData = strings.TrimSpace(in.ImageData)

	errs := map[string]string{}
	if in.Name == "" {
		errs["name"] = "name is required"
	}
	if in.Price.IsNegative() {
		errs["price"] = "price must be >= 0"
	}
	if in.Stock < 0 {
		errs["stock"] = "stock must be >= 0"
	}
	if in.ImageData != "" && !media.SafeImageURL(in.ImageData) {
		errs["imageData"] = "image must be a data: or http(s) URL"
	}
	if in.Category == "" {
		errs["category"] = "category is required"
	} else {
		ok, err := s.categories.Exists(ctx, in.Category)
		if err != nil {
			return err
		}
		if !ok {
			errs["category"] = "category does not exist"
		}
	}
	if len(errs) > 0 {
		return apperr.Validation("invalid product", errs)
	}
	return nil
}
