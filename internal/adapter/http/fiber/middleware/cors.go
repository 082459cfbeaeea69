package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/chargehub/chargehub-api/pkg/config"
)

// NewCORS creates a CORS middleware from application config
func NewCORS(cfg config.CORSConfig) fiber.Handler {
	maxAge := 86400
	if cfg.MaxAge > 0 {
		maxAge = cfg.MaxAge
	}

	origins := joinOr(cfg.AllowedOrigins, "*")
	credentials := cfg.Credentials
	if origins == "*" {
		// fiber refuses wildcard origins with credentials
		credentials = false
	}

	return fibercors.New(fibercors.Config{
		AllowOrigins:     origins,
		AllowMethods:     joinOr(cfg.AllowedMethods, "GET,POST,PUT,PATCH,DELETE,OPTIONS"),
		AllowHeaders:     joinOr(cfg.AllowedHeaders, "Origin,Content-Type,Accept,Authorization,X-Request-ID"),
		ExposeHeaders:    joinOr(cfg.ExposeHeaders, "Content-Length,Content-Disposition"),
		AllowCredentials: credentials,
		MaxAge:           maxAge,
	})
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ",")
}
