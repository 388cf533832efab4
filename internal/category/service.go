package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

// ProductCounter reports how many products reference a category.
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// Service provides business logic for categories.
type Service struct {
	repo     Repository
	products ProductCounter
	log      logrus.FieldLogger
}

func NewService(r Repository, products ProductCounter, log logrus.FieldLogger) *Service {
	return &Service{repo: r, products: products, log: log}
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Category, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists reports whether id names a stored category.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) Create(ctx context.Context, name string) (Category, error) {
	name, err := s.checkName(ctx, "", name)
	if err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, Category{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()})
}

func (s *Service) Rename(ctx context.Context, id, name string) (Category, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if existing.Name, err = s.checkName(ctx, id, name); err != nil {
		return Category{}, err
	}
	return s.repo.Update(ctx, existing)
}

// Delete refuses while any product still points at the category.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d product(s)", ErrInUse, n)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("categoryId", id).Info("category deleted")
	return nil
}

func (s *Service) checkName(ctx context.Context, id, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("name is required", map[string]string{"name": "name is required"})
	}
	other, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil && other.ID != id:
		return "", ErrNameTaken
	case err != nil && !errors.Is(err, ErrNotFound):
		return "", err
	}
	return name, nil
}
