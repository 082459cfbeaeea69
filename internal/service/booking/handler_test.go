package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/mocks"
	"github.com/chargehub/chargehub-api/internal/ports"
)

func newHandlerApp(userID string, role domain.UserRole, service *mocks.MockBookingService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(newTestLogger(), false)})
	stubAuth := func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, userID)
		c.Locals(middleware.LocalUserRole, role)
		return c.Next()
	}
	NewHandler(service).RegisterRoutes(app, stubAuth)
	return app
}

func send(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHandler_AddBooking(t *testing.T) {
	var got *ports.BookingRequest
	service := &mocks.MockBookingService{
		CreateFunc: func(ctx context.Context, req *ports.BookingRequest) (*domain.Booking, error) {
			got = req
			return &domain.Booking{ID: "b-1", EVUserID: req.EVUserID, Status: domain.BookingStatusUpcoming}, nil
		},
	}
	app := newHandlerApp("u-1", domain.UserRoleEVOwner, service)

	resp := send(t, app, "POST", "/api/bookings/addBooking", map[string]interface{}{
		"vehicle_id": "v-1", "booking_date_time": "2026-11-02T10:00:00Z", "no_of_slots": 2,
		"charger_id": "ch-1", "plug_type": "Type 2",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "u-1", got.EVUserID, "owner defaults to the caller")
	assert.Equal(t, 2, got.NoOfSlots)
}

func TestHandler_AddBooking_MissingSlotCount(t *testing.T) {
	app := newHandlerApp("u-1", domain.UserRoleEVOwner, &mocks.MockBookingService{})

	resp := send(t, app, "POST", "/api/bookings/addBooking", map[string]interface{}{"vehicle_id": "v-1"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandler_AddBooking_ForAnotherUser(t *testing.T) {
	service := &mocks.MockBookingService{
		CreateFunc: func(ctx context.Context, req *ports.BookingRequest) (*domain.Booking, error) {
			return &domain.Booking{ID: "b-1", EVUserID: req.EVUserID}, nil
		},
	}
	body := addBookingBody()
	body["ev_user_id"] = "u-2"

	resp := send(t, newHandlerApp("u-1", domain.UserRoleEVOwner, service), "POST", "/api/bookings/addBooking", body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = send(t, newHandlerApp("sup-1", domain.UserRoleSupportOfficer, service), "POST", "/api/bookings/addBooking", body)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func addBookingBody() map[string]interface{} {
	return map[string]interface{}{
		"vehicle_id": "v-1", "booking_date_time": "2026-11-02T10:00:00Z", "no_of_slots": 1,
		"charger_id": "ch-1", "plug_type": "Type 2",
	}
}

func TestHandler_AddBooking_MissingFields(t *testing.T) {
	called := false
	service := &mocks.MockBookingService{
		CreateFunc: func(ctx context.Context, req *ports.BookingRequest) (*domain.Booking, error) {
			called = true
			return nil, nil
		},
	}
	app := newHandlerApp("u-1", domain.UserRoleEVOwner, service)

	resp := send(t, app, "POST", "/api/bookings/addBooking", map[string]interface{}{
		"vehicle_id": "v-1", "charger_id": "ch-1",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "missing required fields: booking_date_time, no_of_slots, plug_type", body["message"])
	assert.False(t, called, "service must not be reached")
}

func TestHandler_AddBooking_Conflict(t *testing.T) {
	service := &mocks.MockBookingService{
		CreateFunc: func(ctx context.Context, req *ports.BookingRequest) (*domain.Booking, error) {
			return nil, domain.ErrSlotConflict
		},
	}
	app := newHandlerApp("u-1", domain.UserRoleEVOwner, service)

	resp := send(t, app, "POST", "/api/bookings/addBooking", addBookingBody())
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "error", "details are hidden outside development")
}

func TestHandler_GetBookedSlots(t *testing.T) {
	start := time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC)
	service := &mocks.MockBookingService{
		GetBookedSlotsFunc: func(ctx context.Context, date string, chargerID string) ([]domain.Slot, error) {
			assert.Equal(t, "2026-11-02", date)
			return []domain.Slot{{BookingID: "b-1", BookingDate: start, StartTime: start, EndTime: start.Add(30 * time.Minute)}}, nil
		},
	}
	app := newHandlerApp("u-1", domain.UserRoleEVOwner, service)

	resp := send(t, app, "POST", "/api/bookings/getBookedSlots", map[string]string{"date": "2026-11-02"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var slots []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&slots))
	require.Len(t, slots, 1)
	assert.Equal(t, "b-1", slots[0]["_id"])

	resp = send(t, app, "GET", "/api/bookings/slots?date=2026-11-02", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = send(t, app, "POST", "/api/bookings/getBookedSlots", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandler_EmptyUpcomingList(t *testing.T) {
	app := newHandlerApp("u-1", domain.UserRoleEVOwner, &mocks.MockBookingService{
		GetUserBookingsFunc: func(ctx context.Context, ownerID string, status domain.BookingStatus) ([]domain.Booking, error) {
			assert.Equal(t, domain.BookingStatusUpcoming, status)
			return nil, nil
		},
	})

	resp := send(t, app, "POST", "/api/bookings/getUserUpcomingBookings", map[string]string{"ev_user_id": "u-1"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool             `json:"success"`
		Message string           `json:"message"`
		Data    []domain.Booking `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "No upcoming bookings found", body.Message)
	assert.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
}

func TestHandler_OperatorRoutes(t *testing.T) {
	service := &mocks.MockBookingService{
		CheckOperatorFunc: func(ctx context.Context, actor ports.Actor, bookingID string) error {
			if actor.UserID != "owner-1" {
				return domain.ErrPermissionDenied
			}
			return nil
		},
		AttachCostFunc: func(ctx context.Context, id string, cost float64) (*domain.Booking, error) {
			return &domain.Booking{ID: id, Cost: &cost}, nil
		},
	}

	driver := newHandlerApp("u-1", domain.UserRoleEVOwner, service)
	resp := send(t, driver, "PATCH", "/api/bookings/b-1/cost", map[string]float64{"cost": 12.5})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	otherOwner := newHandlerApp("owner-2", domain.UserRoleStationOwner, service)
	resp = send(t, otherOwner, "PATCH", "/api/bookings/b-1/cost", map[string]float64{"cost": 12.5})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	owner := newHandlerApp("owner-1", domain.UserRoleStationOwner, service)
	resp = send(t, owner, "PATCH", "/api/bookings/b-1/cost", map[string]float64{"cost": 12.5})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = send(t, owner, "PATCH", "/api/bookings/b-1/cost", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandler_CancelInvalidTransition(t *testing.T) {
	app := newHandlerApp("u-1", domain.UserRoleEVOwner, &mocks.MockBookingService{
		CancelFunc: func(ctx context.Context, id string, actor ports.Actor) (*domain.Booking, error) {
			return nil, domain.ErrInvalidTransition
		},
	})

	resp := send(t, app, "PATCH", "/api/bookings/b-1/cancel", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandler_GetBookingOfAnotherDriver(t *testing.T) {
	app := newHandlerApp("u-1", domain.UserRoleEVOwner, &mocks.MockBookingService{
		GetFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
			return &domain.Booking{ID: id, EVUserID: "u-2"}, nil
		},
	})

	resp := send(t, app, "GET", "/api/bookings/b-1", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestHandler_VersionedAlias(t *testing.T) {
	service := &mocks.MockBookingService{
		GetFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
			return &domain.Booking{ID: id, EVUserID: "u-1"}, nil
		},
	}
	app := newHandlerApp("u-1", domain.UserRoleEVOwner, service)

	for _, path := range []string{"/api/bookings/b-7", "/api/v1/bookings/b-7"} {
		resp := send(t, app, "GET", path, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}
