package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders errors returned from handlers as
// {"message": ..., "errors": {...}}. Internal errors are logged and
// replaced with a generic message.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := HTTPStatus(err)
		body := fiber.Map{}

		var fe *fiber.Error
		var e *Error
		switch {
		case errors.As(err, &fe):
			body["message"] = fe.Message
		case errors.As(err, &e) && e.Kind != KindInternal:
			body["message"] = err.Error()
			if e.Code != "" {
				body["code"] = e.Code
				body["message"] = e.Message
			}
			if len(e.Fields) > 0 {
				body["errors"] = e.Fields
			}
		default:
			log.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).WithError(err).Error("request failed")
			body["message"] = "Something went wrong. Please try again."
		}
		return c.Status(status).JSON(body)
	}
}
