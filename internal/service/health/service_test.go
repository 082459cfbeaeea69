package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func ok(ctx context.Context) error   { return nil }
func fail(ctx context.Context) error { return errors.New("connection refused") }

func TestReady_AllHealthy(t *testing.T) {
	s := NewService("test", newTestLogger())
	s.Register("database", true, ok)
	s.Register("cache", false, ok)

	resp := s.Ready(context.Background())

	assert.True(t, resp.Ready)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestReady_OptionalFailureDegrades(t *testing.T) {
	s := NewService("test", newTestLogger())
	s.Register("database", true, ok)
	s.Register("cache", false, fail)

	resp := s.Ready(context.Background())

	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Contains(t, resp.Checks["cache"].Message, "connection refused")
}

func TestReady_CriticalFailure(t *testing.T) {
	s := NewService("test", newTestLogger())
	s.Register("database", true, fail)
	s.Register("cache", false, fail)

	resp := s.Ready(context.Background())

	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestFiberHandler(t *testing.T) {
	s := NewService("v1.2.3", newTestLogger())
	s.Register("database", true, fail)

	app := fiber.New()
	NewFiberHandler(s).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var live HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&live))
	assert.Equal(t, "v1.2.3", live.Version)

	resp, err = app.Test(httptest.NewRequest("GET", "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
