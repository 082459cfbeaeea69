package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

// Locals keys set by AuthRequired
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
	LocalUser     = "user"
	LocalToken    = "token"
)

// AuthRequired validates the bearer token. Websocket upgrades cannot set
// headers from browsers, so a "token" query parameter is accepted as well.
func AuthRequired(service ports.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		user, err := service.ValidateToken(c.UserContext(), token)
		if err != nil {
			return domain.Wrap(domain.NewUnauthorizedError("invalid or expired token"), err)
		}
		if user.Status == domain.UserStatusSuspended {
			return domain.NewForbiddenError("account suspended")
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUserRole, user.Role)
		c.Locals(LocalUser, user)
		c.Locals(LocalToken, token)

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", domain.NewUnauthorizedError("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", domain.NewUnauthorizedError("invalid authorization header format")
	}
	return parts[1], nil
}

// RequireRoles lets the request through only for the listed roles. It must
// run after AuthRequired.
func RequireRoles(roles ...domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalUserRole).(domain.UserRole)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return domain.ErrPermissionDenied
	}
}

// PermissionChecker resolves role permissions (see auth.RBACService)
type PermissionChecker interface {
	CheckPermission(role domain.UserRole, resource, action string) bool
}

// RequirePermission lets the request through when the caller's role holds
// action on resource. It must run after AuthRequired.
func RequirePermission(rbac PermissionChecker, resource, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalUserRole).(domain.UserRole)
		if !rbac.CheckPermission(role, resource, action) {
			return domain.ErrPermissionDenied
		}
		return c.Next()
	}
}

// Actor returns the authenticated caller.
func Actor(c *fiber.Ctx) ports.Actor {
	id, _ := c.Locals(LocalUserID).(string)
	role, _ := c.Locals(LocalUserRole).(domain.UserRole)
	return ports.Actor{UserID: id, Role: role}
}

// Token returns the raw bearer token of the request.
func Token(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalToken).(string)
	return token
}
