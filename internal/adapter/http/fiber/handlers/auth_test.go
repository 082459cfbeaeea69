package handlers

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/mocks"
	"github.com/chargehub/chargehub-api/internal/ports"
)

func mountAuth(service *mocks.MockAuthService) func(fiber.Router) {
	h := NewAuthHandler(service, newTestLogger())
	return func(r fiber.Router) {
		r.Post("/auth/login", h.Login)
		r.Post("/auth/register", h.Register)
		r.Post("/auth/refresh", h.RefreshToken)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	service := &mocks.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*ports.TokenPair, *domain.User, error) {
			if password != "secret123" {
				return nil, nil, domain.ErrInvalidCredentials
			}
			return &ports.TokenPair{AccessToken: "a", RefreshToken: "r"}, &domain.User{ID: "u-1", Email: email}, nil
		},
	}
	app := newTestApp("", "", mountAuth(service))

	resp := doJSON(t, app, "POST", "/api/v1/auth/login", map[string]string{"email": "a@b.co", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Tokens ports.TokenPair `json:"tokens"`
		User   domain.User     `json:"user"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "a", body.Tokens.AccessToken)
	assert.Equal(t, "u-1", body.User.ID)

	resp = doJSON(t, app, "POST", "/api/v1/auth/login", map[string]string{"email": "a@b.co", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/v1/auth/login", map[string]string{"email": "a@b.co"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var errBody map[string]interface{}
	decode(t, resp, &errBody)
	assert.Equal(t, false, errBody["success"])
	assert.Equal(t, "missing required fields: password", errBody["message"])
}

func TestAuthHandler_Register(t *testing.T) {
	var registered *domain.User
	service := &mocks.MockAuthService{
		RegisterFunc: func(ctx context.Context, user *domain.User) error {
			user.ID = "u-new"
			registered = user
			return nil
		},
		LoginFunc: func(ctx context.Context, email, password string) (*ports.TokenPair, *domain.User, error) {
			return &ports.TokenPair{AccessToken: "a"}, registered, nil
		},
	}
	app := newTestApp("", "", mountAuth(service))

	resp := doJSON(t, app, "POST", "/api/v1/auth/register", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "longenough", "role": "station_owner",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, domain.UserRoleStationOwner, registered.Role)

	resp = doJSON(t, app, "POST", "/api/v1/auth/register", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "longenough", "role": "admin",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/v1/auth/register", map[string]string{
		"name": "Ana", "email": "not-an-email", "password": "longenough",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandler_LogoutRevokesBothTokens(t *testing.T) {
	var revoked []string
	service := &mocks.MockAuthService{
		LogoutFunc: func(ctx context.Context, token string) error {
			revoked = append(revoked, token)
			return nil
		},
	}
	app := newTestApp("u-1", domain.UserRoleEVOwner, mountAuth(service))

	resp := doJSON(t, app, "POST", "/api/v1/auth/logout", map[string]string{"refreshToken": "refresh-token"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"test-token", "refresh-token"}, revoked)
}

func TestAuthHandler_Me(t *testing.T) {
	app := newTestApp("u-1", domain.UserRoleEVOwner, mountAuth(&mocks.MockAuthService{}))

	resp := doJSON(t, app, "GET", "/api/v1/auth/me", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var user domain.User
	decode(t, resp, &user)
	assert.Equal(t, "u-1", user.ID)
}
