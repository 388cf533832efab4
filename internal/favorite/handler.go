package favorite

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/marketplace-backend/internal/user"
)

// Handler serves the signed-in user's wishlist.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/favorites", h.getFavorites)
	app.Post("/api/v1/favorites", h.addFavorite)
	app.Delete("/api/v1/favorites/:productId", h.removeFavorite)
	app.Post("/api/v1/favorites/:productId/move-to-cart", h.moveToCart)
}

type favoriteRequest struct {
	ProductID string `json:"productId"`
}

func (h *Handler) addFavorite(c *fiber.Ctx) error {
	payload := new(favoriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Add(c.UserContext(), userID, payload.ProductID); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"productId": payload.ProductID})
}

func (h *Handler) removeFavorite(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Remove(c.UserContext(), userID, c.Params("productId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"productId": c.Params("productId")})
}

func (h *Handler) moveToCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.MoveToCart(c.UserContext(), userID, c.Params("productId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Moved to cart", "productId": c.Params("productId")})
}

func (h *Handler) getFavorites(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	favs, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(favs)
}
