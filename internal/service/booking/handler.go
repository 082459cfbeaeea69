package booking

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/pkg/validation"
)

// Handler handles booking HTTP requests
type Handler struct {
	service ports.BookingService
}

// NewHandler creates a new booking handler
func NewHandler(service ports.BookingService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers booking routes under /api/bookings and the
// versioned /api/v1/bookings alias.
func (h *Handler) RegisterRoutes(router fiber.Router, authMiddleware fiber.Handler) {
	for _, prefix := range []string{"/api/bookings", "/api/v1/bookings"} {
		h.mount(router.Group(prefix, authMiddleware))
	}
}

func (h *Handler) mount(bookings fiber.Router) {
	operator := middleware.RequireRoles(domain.UserRoleStationOwner, domain.UserRoleAdmin, domain.UserRoleSupportOfficer)

	bookings.Post("/addBooking", h.AddBooking)
	bookings.Post("/getBookedSlots", h.GetBookedSlots)
	bookings.Get("/slots", h.GetBookedSlots)
	bookings.Post("/getUserUpcomingBookings", h.GetUserUpcomingBookings)
	bookings.Post("/getUserCompletedBookings", h.GetUserCompletedBookings)
	bookings.Get("/station/:stationId", h.GetStationBookings)
	bookings.Get("/:id", h.GetBooking)

	bookings.Patch("/:id/cancel", h.CancelBooking)
	bookings.Patch("/:id/arrival", operator, h.stationOperator, h.RecordArrival)
	bookings.Patch("/:id/complete", operator, h.stationOperator, h.CompleteBooking)
	bookings.Patch("/:id/no-show", operator, h.stationOperator, h.MarkNoShow)
	bookings.Patch("/:id/cost", operator, h.stationOperator, h.AttachCost)
}

func (h *Handler) stationOperator(c *fiber.Ctx) error {
	if err := h.service.CheckOperator(c.UserContext(), middleware.Actor(c), c.Params("id")); err != nil {
		return err
	}
	return c.Next()
}

// AddBookingRequest represents the request body of addBooking. EVUserID
// defaults to the caller; only staff may book for someone else.
type AddBookingRequest struct {
	EVUserID        string `json:"ev_user_id"`
	VehicleID       string `json:"vehicle_id" validate:"required"`
	BookingDateTime string `json:"booking_date_time" validate:"required"`
	NoOfSlots       *int   `json:"no_of_slots" validate:"required"`
	ChargerID       string `json:"charger_id" validate:"required"`
	PlugType        string `json:"plug_type" validate:"required"`
}

// AddBooking handles POST /api/bookings/addBooking
func (h *Handler) AddBooking(c *fiber.Ctx) error {
	var req AddBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	ownerID, err := ownerFor(c, req.EVUserID)
	if err != nil {
		return err
	}

	booking, err := h.service.Create(c.UserContext(), &ports.BookingRequest{
		EVUserID:        ownerID,
		VehicleID:       req.VehicleID,
		BookingDateTime: req.BookingDateTime,
		NoOfSlots:       *req.NoOfSlots,
		ChargerID:       req.ChargerID,
		PlugType:        req.PlugType,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(booking)
}

// BookedSlotsRequest represents the request body of getBookedSlots
type BookedSlotsRequest struct {
	Date      string `json:"date" query:"date"`
	ChargerID string `json:"charger_id" query:"charger_id"`
}

// GetBookedSlots handles POST /api/bookings/getBookedSlots and GET /api/bookings/slots
func (h *Handler) GetBookedSlots(c *fiber.Ctx) error {
	var req BookedSlotsRequest
	if c.Method() == fiber.MethodGet {
		if err := c.QueryParser(&req); err != nil {
			return domain.NewValidationError("invalid query")
		}
	} else if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if req.Date == "" {
		return domain.NewValidationError("missing required fields: date")
	}

	slots, err := h.service.GetBookedSlots(c.UserContext(), req.Date, req.ChargerID)
	if err != nil {
		return err
	}

	return c.JSON(slots)
}

// UserBookingsRequest represents the request body of the per-user listings
type UserBookingsRequest struct {
	EVUserID string `json:"ev_user_id"`
}

// GetUserUpcomingBookings handles POST /api/bookings/getUserUpcomingBookings
func (h *Handler) GetUserUpcomingBookings(c *fiber.Ctx) error {
	return h.userBookings(c, domain.BookingStatusUpcoming, "No upcoming bookings found")
}

// GetUserCompletedBookings handles POST /api/bookings/getUserCompletedBookings
func (h *Handler) GetUserCompletedBookings(c *fiber.Ctx) error {
	return h.userBookings(c, domain.BookingStatusCompleted, "No completed bookings found")
}

func (h *Handler) userBookings(c *fiber.Ctx, status domain.BookingStatus, emptyMessage string) error {
	var req UserBookingsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewValidationError("invalid request body")
		}
	}

	ownerID, err := ownerFor(c, req.EVUserID)
	if err != nil {
		return err
	}

	bookings, err := h.service.GetUserBookings(c.UserContext(), ownerID, status)
	if err != nil {
		return err
	}

	if len(bookings) == 0 {
		return c.JSON(fiber.Map{
			"success": true,
			"message": emptyMessage,
			"data":    []domain.Booking{},
		})
	}

	return c.JSON(bookings)
}

// GetBooking handles GET /api/bookings/:id
func (h *Handler) GetBooking(c *fiber.Ctx) error {
	booking, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	actor := middleware.Actor(c)
	if booking.EVUserID != actor.UserID && actor.Role == domain.UserRoleEVOwner {
		return domain.ErrPermissionDenied
	}

	return c.JSON(booking)
}

// GetStationBookings handles GET /api/bookings/station/:stationId?date=YYYY-MM-DD
func (h *Handler) GetStationBookings(c *fiber.Ctx) error {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := ParseDay(raw)
		if err != nil {
			return domain.Wrap(domain.NewValidationError("invalid date"), err)
		}
		day = parsed
	}

	bookings, err := h.service.GetStationBookings(c.UserContext(), middleware.Actor(c), c.Params("stationId"), day)
	if err != nil {
		return err
	}

	return c.JSON(bookings)
}

// CancelBooking handles PATCH /api/bookings/:id/cancel
func (h *Handler) CancelBooking(c *fiber.Ctx) error {
	booking, err := h.service.Cancel(c.UserContext(), c.Params("id"), middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

// CostRequest carries an optional cost for complete and a required one for cost
type CostRequest struct {
	Cost *float64 `json:"cost"`
}

// CompleteBooking handles PATCH /api/bookings/:id/complete
func (h *Handler) CompleteBooking(c *fiber.Ctx) error {
	var req CostRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewValidationError("invalid request body")
		}
	}

	booking, err := h.service.Complete(c.UserContext(), c.Params("id"), req.Cost)
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

// MarkNoShow handles PATCH /api/bookings/:id/no-show
func (h *Handler) MarkNoShow(c *fiber.Ctx) error {
	booking, err := h.service.MarkNoShow(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

// RecordArrival handles PATCH /api/bookings/:id/arrival
func (h *Handler) RecordArrival(c *fiber.Ctx) error {
	booking, err := h.service.RecordArrival(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

// AttachCost handles PATCH /api/bookings/:id/cost
func (h *Handler) AttachCost(c *fiber.Ctx) error {
	var req CostRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if req.Cost == nil {
		return domain.NewValidationError("missing required fields: cost")
	}

	booking, err := h.service.AttachCost(c.UserContext(), c.Params("id"), *req.Cost)
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

// ownerFor resolves whose bookings a request acts on. EV owners may only act
// for themselves; staff may name any user.
func ownerFor(c *fiber.Ctx, requested string) (string, error) {
	actor := middleware.Actor(c)
	requested = strings.TrimSpace(requested)
	if requested == "" || requested == actor.UserID {
		return actor.UserID, nil
	}
	if actor.Role.IsStaff() {
		return requested, nil
	}
	return "", domain.ErrPermissionDenied
}
