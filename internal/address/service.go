package address

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

// Service manages a user's saved shipping addresses.
type Service struct {
	repo Repository
	log  logrus.FieldLogger
	now  func() time.Time
}

func NewService(repo Repository, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, userID string) ([]Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one of userID's addresses. Checkout uses it to resolve an
// addressId into shipping info.
func (s *Service) Get(ctx context.Context, userID, id string) (Address, error) {
	return s.repo.Get(ctx, userID, id)
}

// Add saves a new address. fields may use any accepted shipping key names.
func (s *Service) Add(ctx context.Context, userID string, fields map[string]any) (Address, error) {
	info, err := validShipping(fields)
	if err != nil {
		return Address{}, err
	}
	now := s.now().UTC()
	a := Address{
		ID:           uuid.NewString(),
		UserID:       userID,
		Label:        label(fields),
		ShippingInfo: info,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return Address{}, err
	}
	s.log.WithFields(logrus.Fields{"userId": userID, "addressId": created.ID}).Info("address added")
	return created, nil
}

// Update replaces the fields of an existing address.
func (s *Service) Update(ctx context.Context, userID, id string, fields map[string]any) (Address, error) {
	if strings.TrimSpace(id) == "" {
		return Address{}, apperr.Validation("addressId is required", map[string]string{"addressId": "addressId is required"})
	}
	info, err := validShipping(fields)
	if err != nil {
		return Address{}, err
	}
	return s.repo.Update(ctx, Address{
		ID:           id,
		UserID:       userID,
		Label:        label(fields),
		ShippingInfo: info,
		UpdatedAt:    s.now().UTC(),
	})
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"userId": userID, "addressId": id}).Info("address deleted")
	return nil
}

func validShipping(fields map[string]any) (ShippingInfo, error) {
	info := NormalizeShipping(fields)
	if missing := info.Missing(); len(missing) > 0 {
		return ShippingInfo{}, apperr.Validation("shipping information is incomplete", missing)
	}
	return info, nil
}

func label(fields map[string]any) string {
	s, _ := fields["label"].(string)
	return strings.TrimSpace(s)
}
