package order

import (
	"bytes"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/marketplace-backend/internal/user"
)

// Handler exposes checkout, tracking and the seller and admin order views.
type Handler struct {
	service *Service
	users   *user.Service
}

func NewHandler(s *Service, users *user.Service) *Handler {
	return &Handler{service: s, users: users}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.placeOrder)
	app.Get("/api/v1/orders", h.listOrders)
	app.Get("/api/v1/orders/stream", h.streamOrders)
	app.Get("/api/v1/orders/:id", h.trackOrder)
	app.Get("/api/v1/orders/:id/stream", h.streamOrder)
	app.Patch("/api/v1/orders/:id/status", h.setStatus)

	app.Get("/api/v1/seller/orders", user.RequireApprovedSeller(h.users), h.sellerOrders)

	admin := user.RequireRole(user.RoleAdmin)
	app.Get("/api/v1/admin/orders", admin, h.adminOrders)
	app.Get("/api/v1/admin/orders/export.csv", admin, h.exportCSV)
	app.Get("/api/v1/admin/orders/:id/invoice", admin, h.invoice)
	app.Patch("/api/v1/admin/orders/:id/payment", admin, h.markPaid)
	app.Delete("/api/v1/admin/orders/:id", admin, h.deleteOrder)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	session, err := user.SessionFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	payload := new(CheckoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.PlaceOrder(c.UserContext(), session, *payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	orders, err := h.service.ListForBuyer(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *Handler) trackOrder(c *fiber.Ctx) error {
	session, err := user.SessionFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	t, err := h.service.Track(c.UserContext(), c.Params("id"), session)
	if err != nil {
		return err
	}
	return c.JSON(t)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setStatus(c *fiber.Ctx) error {
	session, err := user.SessionFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.SetStatus(c.UserContext(), c.Params("id"), payload.Status, session)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

// sellerOrders lists the caller's orders. Admins may pass ?seller= to see
// a seller's view.
func (h *Handler) sellerOrders(c *fiber.Ctx) error {
	session, err := user.SessionFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	sellerID := session.UserID
	if session.IsAdmin() && c.Query("seller") != "" {
		sellerID = c.Query("seller")
	}

	orders, err := h.service.ListForSeller(c.UserContext(), sellerID)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

const dateLayout = "2006-01-02"

// parseQuery reads the admin console filters from the query string.
func parseQuery(c *fiber.Ctx) (Query, error) {
	q := Query{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Seller:   c.Query("seller"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 0),
	}
	for _, f := range []struct {
		key string
		dst *time.Time
	}{
		{"from", &q.From},
		{"to", &q.To},
	} {
		raw := c.Query(f.key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return Query{}, fiber.NewError(fiber.StatusBadRequest, f.key+" must be a date like "+dateLayout)
		}
		*f.dst = t
	}
	return q, nil
}

func (h *Handler) adminOrders(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return err
	}

	page, err := h.service.AdminList(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handler) exportCSV(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := h.service.ExportCSV(c.UserContext(), q, &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="orders-`+h.service.now().UTC().Format("20060102")+`.csv"`)
	return c.Send(buf.Bytes())
}

func (h *Handler) invoice(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.Invoice(c.UserContext(), c.Params("id"), &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

func (h *Handler) markPaid(c *fiber.Ctx) error {
	session, err := user.SessionFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	updated, err := h.service.MarkPaid(c.UserContext(), c.Params("id"), session)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

func (h *Handler) deleteOrder(c *fiber.Ctx) error {
	session, err := user.SessionFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.service.Delete(c.UserContext(), c.Params("id"), session); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Order " + strconv.Quote(c.Params("id")) + " deleted"})
}
