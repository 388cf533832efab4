package media

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/media/:id", h.getBlob)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/media", h.upload)
}

func (h *Handler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "file is required"})
	}
	if file.Size > MaxBlobSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"message": "file is too large"})
	}

	f, err := file.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxBlobSize+1))
	if err != nil {
		return err
	}

	contentType := http.DetectContentType(data)
	blob, err := h.store.Put(c.UserContext(), contentType, data)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":          blob.ID,
		"url":         URL(blob.ID),
		"contentType": blob.ContentType,
	})
}

func (h *Handler) getBlob(c *fiber.Ctx) error {
	blob, err := h.store.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, blob.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(blob.Data)
}
