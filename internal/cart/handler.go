package cart

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/marketplace-backend/internal/user"
)

// Handler serves the signed-in user's cart.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Put("/api/v1/cart", h.replaceCart)
	app.Delete("/api/v1/cart", h.clearCart)
	app.Post("/api/v1/cart/items", h.addToCart)
	app.Delete("/api/v1/cart/items/:productId", h.removeFromCart)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	view, err := h.service.View(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *Handler) replaceCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Replace(c.UserContext(), userID, append(json.RawMessage(nil), c.Body()...)); err != nil {
		return err
	}
	return h.getCart(c)
}

// addToCart accepts any item object. quantity (or qty/count) is a signed
// delta here; it defaults to 1 and a negative value decrements.
func (h *Handler) addToCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "body must be a JSON object"})
	}

	delta := 1
	if v, ok := fields[quantityKey(fields)]; ok {
		n, ok := number(v)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"quantity": "quantity must be a number"}})
		}
		delta = n
	}
	if delta != 0 {
		if err := h.service.Add(c.UserContext(), userID, fields, delta); err != nil {
			return err
		}
	}
	return h.getCart(c)
}

func (h *Handler) removeFromCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Remove(c.UserContext(), userID, c.Params("productId")); err != nil {
		return err
	}
	return h.getCart(c)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Clear(c.UserContext(), userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
