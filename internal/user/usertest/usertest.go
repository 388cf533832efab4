// Package usertest builds Fiber apps for handler tests. Requests carry the
// caller in X-User-ID and X-User-Role headers instead of a signed token.
package usertest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

// NewApp returns an app with the application error handler and a
// middleware that injects an unsigned jwt.Token into locals.
func NewApp(register ...func(app *fiber.App)) *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(log)})
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-User-ID"); id != "" {
			claims := jwt.MapClaims{"user_id": id, "role": c.Get("X-User-Role")}
			c.Locals("user", &jwt.Token{Claims: claims})
		}
		return c.Next()
	})
	for _, r := range register {
		r(app)
	}
	return app
}

// Request builds a request as the given user. An empty userID sends it
// unauthenticated.
func Request(method, target, body, userID, role string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Role", role)
	}
	return req
}
