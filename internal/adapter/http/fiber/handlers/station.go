package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/pkg/validation"
)

type StationHandler struct {
	service ports.StationService
	log     *zap.Logger
}

func NewStationHandler(service ports.StationService, log *zap.Logger) *StationHandler {
	return &StationHandler{
		service: service,
		log:     log,
	}
}

func (h *StationHandler) RegisterRoutes(router fiber.Router) {
	owner := middleware.RequireRoles(domain.UserRoleStationOwner, domain.UserRoleAdmin, domain.UserRoleSupportOfficer)

	stations := router.Group("/stations")
	stations.Get("", h.List)
	stations.Post("", middleware.RequireRoles(domain.UserRoleStationOwner), h.Register)
	stations.Get("/mine", owner, h.ListMine)
	stations.Get("/:id", h.Get)
	stations.Put("/:id", owner, h.Update)
	stations.Post("/:id/chargers", owner, h.AddCharger)
	stations.Delete("/:id/chargers/:chargerId", owner, h.RemoveCharger)
	stations.Post("/:id/image", owner, h.SetImage)
}

type ChargerRequest struct {
	Name           string   `json:"name" validate:"required"`
	PowerKW        float64  `json:"power_kw" validate:"gt=0"`
	ConnectorTypes []string `json:"connector_types" validate:"required,min=1,dive,required"`
}

func (r ChargerRequest) input() ports.ChargerInput {
	return ports.ChargerInput{Name: r.Name, PowerKW: r.PowerKW, ConnectorTypes: r.ConnectorTypes}
}

type StationRequest struct {
	Name      string           `json:"name" validate:"required"`
	Address   string           `json:"address" validate:"required"`
	City      string           `json:"city" validate:"required"`
	Latitude  float64          `json:"latitude" validate:"latitude"`
	Longitude float64          `json:"longitude" validate:"longitude"`
	Chargers  []ChargerRequest `json:"chargers" validate:"omitempty,dive"`
}

func (r StationRequest) station() *domain.ChargingStation {
	return &domain.ChargingStation{
		Name:      r.Name,
		Address:   r.Address,
		City:      r.City,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

// List returns approved stations, optionally filtered by city
func (h *StationHandler) List(c *fiber.Ctx) error {
	stations, err := h.service.List(c.UserContext(), domain.StationFilter{
		Status: domain.StationStatusApproved,
		City:   c.Query("city"),
	})
	if err != nil {
		return err
	}
	return c.JSON(stations)
}

func (h *StationHandler) ListMine(c *fiber.Ctx) error {
	stations, err := h.service.List(c.UserContext(), domain.StationFilter{
		OwnerID: middleware.Actor(c).UserID,
		Status:  domain.StationStatus(c.Query("status")),
	})
	if err != nil {
		return err
	}
	return c.JSON(stations)
}

// Get hides unapproved stations from everyone but their owner and staff.
func (h *StationHandler) Get(c *fiber.Ctx) error {
	station, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	actor := middleware.Actor(c)
	if station.Status != domain.StationStatusApproved && station.OwnerID != actor.UserID && !actor.Role.IsStaff() {
		return domain.ErrStationNotFound
	}
	return c.JSON(station)
}

func (h *StationHandler) Register(c *fiber.Ctx) error {
	var req StationRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	chargers := make([]ports.ChargerInput, 0, len(req.Chargers))
	for _, ch := range req.Chargers {
		chargers = append(chargers, ch.input())
	}

	station, err := h.service.Register(c.UserContext(), middleware.Actor(c).UserID, req.station(), chargers)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(station)
}

func (h *StationHandler) Update(c *fiber.Ctx) error {
	var req StationRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	update := req.station()
	update.ID = c.Params("id")
	station, err := h.service.Update(c.UserContext(), middleware.Actor(c), update)
	if err != nil {
		return err
	}
	return c.JSON(station)
}

func (h *StationHandler) AddCharger(c *fiber.Ctx) error {
	var req ChargerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	charger, err := h.service.AddCharger(c.UserContext(), middleware.Actor(c), c.Params("id"), req.input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(charger)
}

func (h *StationHandler) RemoveCharger(c *fiber.Ctx) error {
	if err := h.service.RemoveCharger(c.UserContext(), middleware.Actor(c), c.Params("id"), c.Params("chargerId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *StationHandler) SetImage(c *fiber.Ctx) error {
	var req struct {
		FileID string `json:"file_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	if err := h.service.SetImage(c.UserContext(), middleware.Actor(c), c.Params("id"), req.FileID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "image_id": req.FileID})
}
