package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
)

// ErrorHandler renders every error as {success:false, message, error?}. The
// underlying cause is only included when exposeDetails is set.
func ErrorHandler(log *zap.Logger, exposeDetails bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := resolve(err)

		if code >= fiber.StatusInternalServerError {
			log.Error("Internal Server Error",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
			)
		}

		body := fiber.Map{
			"success": false,
			"message": message,
		}
		if exposeDetails {
			body["error"] = err.Error()
		}

		return c.Status(code).JSON(body)
	}
}

func resolve(err error) (int, string) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return StatusFor(appErr.Kind), appErr.Message
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}
	return fiber.StatusInternalServerError, "internal server error"
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindInvalidTransition:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized
	case domain.KindForbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}
