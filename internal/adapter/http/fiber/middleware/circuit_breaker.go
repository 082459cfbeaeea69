package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/infrastructure/circuitbreaker"
	"github.com/chargehub/chargehub-api/pkg/config"
)

// CircuitBreaker sheds load with 503 once too many requests end in server
// errors, typically because the database is down. Client errors do not count.
func CircuitBreaker(cfg config.CircuitBreakerConfig, log *zap.Logger) fiber.Handler {
	cb := gobreaker.NewCircuitBreaker(circuitbreaker.Settings("chargehub-api", cfg, log))

	return func(c *fiber.Ctx) error {
		var handlerErr error
		_, err := cb.Execute(func() (interface{}, error) {
			handlerErr = c.Next()
			if isServerFailure(handlerErr) {
				return nil, handlerErr
			}
			return nil, nil
		})

		if circuitbreaker.IsOpen(err) {
			return fiber.NewError(fiber.StatusServiceUnavailable, "service temporarily unavailable")
		}

		return handlerErr
	}
}

func isServerFailure(err error) bool {
	if err == nil {
		return false
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code >= fiber.StatusInternalServerError
	}
	return domain.KindOf(err) == domain.KindInternal
}
