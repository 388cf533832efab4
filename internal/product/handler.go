package product

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/marketplace-backend/internal/media"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

type Handler struct {
	service *Service
	users   *user.Service
}

func NewHandler(service *Service, users *user.Service) *Handler {
	return &Handler{service: service, users: users}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/:id", h.getProduct)
	app.Get("/api/v1/products/:id/image", h.getProductImage)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	writer := user.RequireApprovedSeller(h.users)
	app.Get("/api/v1/seller/products", user.RequireRole(user.RoleSeller), h.getOwnProducts)
	app.Post("/api/v1/products", writer, h.createProduct)
	app.Put("/api/v1/products/:id", writer, h.updateProduct)
	app.Delete("/api/v1/products/:id", writer, h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), Filter{
		CategoryID: c.Query("category"),
		SellerID:   c.Query("seller"),
	})
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) getOwnProducts(c *fiber.Ctx) error {
	s, err := user.SessionFromCtx(c)
	if err != nil {
		return err
	}
	products, err := h.service.List(c.UserContext(), Filter{SellerID: s.UserID})
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// getProductImage serves inline images directly and redirects to remote ones.
func (h *Handler) getProductImage(c *fiber.Ctx) error {
	p, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if contentType, data, err := media.DecodeDataURL(p.ImageData); err == nil {
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(data)
	}
	if media.SafeImageURL(p.ImageData) {
		return c.Redirect(p.ImageData, fiber.StatusFound)
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "image not available"})
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	s, err := user.SessionFromCtx(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	created, err := h.service.Create(c.UserContext(), s, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	s, err := user.SessionFromCtx(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	updated, err := h.service.Update(c.UserContext(), s, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	s, err := user.SessionFromCtx(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), s, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
