package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

// Session identifies the caller of a request. Handlers build it from the
// verified token and pass it down explicitly.
type Session struct {
	UserID string
	Role   Role
}

func (s Session) IsAdmin() bool  { return s.Role == RoleAdmin }
func (s Session) IsSeller() bool { return s.Role == RoleSeller }
func (s Session) IsBuyer() bool  { return s.Role == RoleBuyer }

var errForbidden = apperr.New(apperr.KindAuthorization, "you do not have access to this resource")

// SessionFromCtx reads the user_id and role claims from the JWT stored in
// c.Locals("user") by the jwt middleware.
func SessionFromCtx(c *fiber.Ctx) (Session, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return Session{}, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, fiber.ErrUnauthorized
	}
	id, _ := claims["user_id"].(string)
	if id == "" {
		return Session{}, fiber.ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	if !Role(role).Valid() {
		role = string(RoleBuyer)
	}
	return Session{UserID: id, Role: Role(role)}, nil
}

// GetUserIDFromCtx extracts the user_id claim. Shared by every package
// with per-user routes.
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	s, err := SessionFromCtx(c)
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}

// RequireRole rejects callers whose role is not listed.
func RequireRole(roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := SessionFromCtx(c)
		if err != nil {
			return err
		}
		for _, r := range roles {
			if s.Role == r {
				return c.Next()
			}
		}
		return errForbidden
	}
}

// RequireApprovedSeller lets admins through and sellers only once an admin
// approved them. Approval is read from the store, not the token, so it
// takes effect without a new sign-in.
func RequireApprovedSeller(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := SessionFromCtx(c)
		if err != nil {
			return err
		}
		if s.IsAdmin() {
			return c.Next()
		}
		if !s.IsSeller() {
			return errForbidden
		}
		u, err := svc.GetByID(c.UserContext(), s.UserID)
		if err != nil {
			return err
		}
		if !u.Approved {
			return ErrNotApproved
		}
		return c.Next()
	}
}
