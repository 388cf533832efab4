package category

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/marketplace-backend/internal/user"
)

type Handler struct {
	service *Service
}

type categoryRequest struct {
	Name string `json:"name"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/categories", h.getCategories)
	app.Get("/api/v1/categories/:id", h.getCategory)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	admin := user.RequireRole(user.RoleAdmin)
	app.Post("/api/v1/categories", admin, h.createCategory)
	app.Patch("/api/v1/categories/:id", admin, h.renameCategory)
	app.Delete("/api/v1/categories/:id", admin, h.deleteCategory)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *Handler) getCategory(c *fiber.Ctx) error {
	item, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (h *Handler) createCategory(c *fiber.Ctx) error {
	var payload categoryRequest
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	created, err := h.service.Create(c.UserContext(), payload.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) renameCategory(c *fiber.Ctx) error {
	var payload categoryRequest
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	updated, err := h.service.Rename(c.UserContext(), c.Params("id"), payload.Name)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

func (h *Handler) deleteCategory(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}
