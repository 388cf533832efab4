package order

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/wichananm65/marketplace-backend/internal/user"
)

// heartbeatInterval keeps idle event streams from being closed by proxies.
const heartbeatInterval = 15 * time.Second

// Present resolves images and builds the tracking view of o. Streams use
// it for every pushed update.
func (s *Service) Present(ctx context.Context, o Order) Tracking {
	s.resolveImages(ctx, o.Items)
	return BuildTracking(o)
}

// streamOrders pushes the caller's order list, then every change to any of
// their orders, as server-sent events.
func (h *Handler) streamOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	updates, cancel := h.service.Hub().Subscribe(Filter{UserID: userID})
	snapshot, err := h.service.ListForBuyer(c.UserContext(), userID)
	if err != nil {
		cancel()
		return err
	}
	h.stream(c, snapshot, updates, cancel, "")
	return nil
}

// streamOrder pushes the tracking view of one order and then its changes.
func (h *Handler) streamOrder(c *fiber.Ctx) error {
	session, err := user.SessionFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	id := c.Params("id")
	updates, cancel := h.service.Hub().Subscribe(Filter{OrderID: id})
	snapshot, err := h.service.Track(c.UserContext(), id, session)
	if err != nil {
		cancel()
		return err
	}
	h.stream(c, snapshot, updates, cancel, id)
	return nil
}

// stream runs after the handler returns, so it must not touch c inside the
// writer.
func (h *Handler) stream(c *fiber.Ctx, snapshot any, updates <-chan Order, cancel func(), orderID string) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	svc := h.service
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		svc.pump(w, snapshot, updates, orderID)
	}))
}

// pump writes the snapshot and then every update until the client goes
// away or the hub closes updates. A single-order stream closed by the hub
// ends with a deleted event.
func (s *Service) pump(w *bufio.Writer, snapshot any, updates <-chan Order, orderID string) {
	if err := writeEvent(w, "snapshot", snapshot); err != nil {
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case o, ok := <-updates:
			if !ok {
				if orderID != "" {
					_ = writeEvent(w, "deleted", map[string]string{"id": orderID})
				}
				return
			}
			if err := writeEvent(w, "order", s.Present(context.Background(), o)); err != nil {
				s.log.WithError(err).WithField("orderId", o.ID).Debug("event stream closed")
				return
			}
		case <-ticker.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
}

// writeEvent writes one server-sent event and flushes it.
func writeEvent(w *bufio.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
