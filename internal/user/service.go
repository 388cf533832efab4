package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

const minPasswordLength = 6

var errAdminSignUp = apperr.Validation("admin accounts cannot be self-registered", map[string]string{"role": "role must be buyer or seller"})

// TokenConfig controls how sign-in tokens are minted.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

type Service struct {
	repo     Repository
	tokens   TokenConfig
	log      logrus.FieldLogger
	throttle *loginThrottle
	now      func() time.Time
}

func NewService(repo Repository, tokens TokenConfig, log logrus.FieldLogger) *Service {
	if tokens.TTL == 0 {
		tokens.TTL = 72 * time.Hour
	}
	return &Service{
		repo:     repo,
		tokens:   tokens,
		log:      log,
		throttle: newLoginThrottle(),
		now:      time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
	ShopName string
	Phone    string
	Address  string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return User{}, apperr.Auth(apperr.CodeInvalidEmail)
	}
	if len(in.Password) < minPasswordLength {
		return User{}, apperr.Auth(apperr.CodeWeakPassword)
	}
	if strings.TrimSpace(in.Name) == "" {
		return User{}, apperr.Validation("name is required", map[string]string{"name": "name is required"})
	}
	role := in.Role
	if role == "" {
		role = RoleBuyer
	}
	if role == RoleAdmin {
		return User{}, errAdminSignUp
	}
	if !role.Valid() {
		return User{}, apperr.Validation("invalid role", map[string]string{"role": "role must be buyer or seller"})
	}

	return s.create(ctx, User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: in.Password,
		Role:     role,
		ShopName: strings.TrimSpace(in.ShopName),
		Phone:    in.Phone,
		Address:  in.Address,
		// sellers wait for an admin
		Approved: role != RoleSeller,
	})
}

func (s *Service) create(ctx context.Context, user User) (User, error) {
	if _, err := s.repo.GetByEmail(ctx, user.Email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.now().UTC()
	user.ID = uuid.NewString()
	user.Password = string(hashed)
	user.CreatedAt = now
	user.UpdatedAt = now
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return User{}, err
	}
	s.log.WithFields(logrus.Fields{"userId": created.ID, "role": created.Role}).Info("user registered")
	return created, nil
}

// Authenticate checks credentials. Repeated failures for the same email
// lock it out for the rest of the window.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	if s.throttle.blocked(email) {
		return User{}, apperr.Auth(apperr.CodeTooManyRequests)
	}

	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.throttle.fail(email)
			return User{}, apperr.Auth(apperr.CodeUserNotFound)
		}
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		s.throttle.fail(email)
		return User{}, apperr.Auth(apperr.CodeWrongPassword)
	}

	s.throttle.reset(email)
	return user, nil
}

// IssueToken signs an HS256 token carrying user_id, email and role.
func (s *Service) IssueToken(user User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     s.now().Add(s.tokens.TTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.tokens.Secret)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// ProfileUpdate holds the fields a user may change on their own profile.
// Nil fields are left alone.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	ShopName *string `json:"shopName,omitempty"`
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return User{}, apperr.Validation("name is required", map[string]string{"name": "name is required"})
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Address != nil {
		user.Address = *in.Address
	}
	if in.ShopName != nil {
		user.ShopName = strings.TrimSpace(*in.ShopName)
	}
	user.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, user)
}

func (s *Service) SetApproved(ctx context.Context, id string, approved bool) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	user.Approved = approved
	user.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return User{}, err
	}
	s.log.WithFields(logrus.Fields{"userId": id, "approved": approved}).Info("seller approval changed")
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != RoleAdmin {
			s.log.WithField("email", email).Warn("bootstrap admin email belongs to a non-admin account")
		}
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = s.create(ctx, User{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     RoleAdmin,
		Approved: true,
	})
	return err
}
