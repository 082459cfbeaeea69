package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/pkg/validation"
)

type UserHandler struct {
	service ports.UserService
	files   ports.FileService
	log     *zap.Logger
}

func NewUserHandler(service ports.UserService, files ports.FileService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		files:   files,
		log:     log,
	}
}

// RegisterRoutes mounts the /users/me routes on an authenticated router.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	me := router.Group("/users/me")
	me.Get("", h.GetProfile)
	me.Put("", h.UpdateProfile)
	me.Put("/password", h.ChangePassword)
	me.Post("/avatar", h.SetAvatar)
	me.Get("/vehicles", h.ListVehicles)
	me.Post("/vehicles", h.AddVehicle)
	me.Put("/vehicles/:id", h.UpdateVehicle)
	me.Delete("/vehicles/:id", h.DeleteVehicle)
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.service.GetProfile(c.UserContext(), middleware.Actor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

type UpdateProfileRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	NotifyByEmail *bool   `json:"notify_by_email"`
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}

	user, err := h.service.UpdateProfile(c.UserContext(), middleware.Actor(c).UserID, ports.ProfileUpdate{
		Name:          req.Name,
		Phone:         req.Phone,
		NotifyByEmail: req.NotifyByEmail,
	})
	if err != nil {
		return err
	}
	return c.JSON(user)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.UserContext(), middleware.Actor(c).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "password changed"})
}

// SetAvatar accepts either a multipart "file" upload or {"file_id"} of an
// earlier upload.
func (h *UserHandler) SetAvatar(c *fiber.Ctx) error {
	userID := middleware.Actor(c).UserID

	fileID, err := h.avatarFileID(c, userID)
	if err != nil {
		return err
	}
	if err := h.service.SetProfileImage(c.UserContext(), userID, fileID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "profile_image_id": fileID})
}

func (h *UserHandler) avatarFileID(c *fiber.Ctx, userID string) (string, error) {
	if header, err := c.FormFile("file"); err == nil {
		file, err := uploadForm(c, h.files, userID, header, true)
		if err != nil {
			return "", err
		}
		return file.ID, nil
	}

	var req struct {
		FileID string `json:"file_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return "", domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return "", err
	}
	return req.FileID, nil
}

type VehicleRequest struct {
	Make          string  `json:"make" validate:"required"`
	Model         string  `json:"model" validate:"required"`
	PlateNumber   string  `json:"plate_number" validate:"required"`
	ConnectorType string  `json:"connector_type"`
	BatteryKWh    float64 `json:"battery_kwh" validate:"gte=0"`
}

func (r VehicleRequest) vehicle() *domain.Vehicle {
	return &domain.Vehicle{
		Make:          r.Make,
		Model:         r.Model,
		PlateNumber:   r.PlateNumber,
		ConnectorType: r.ConnectorType,
		BatteryKWh:    r.BatteryKWh,
	}
}

func (h *UserHandler) ListVehicles(c *fiber.Ctx) error {
	vehicles, err := h.service.ListVehicles(c.UserContext(), middleware.Actor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(vehicles)
}

func (h *UserHandler) AddVehicle(c *fiber.Ctx) error {
	var req VehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	vehicle := req.vehicle()
	if err := h.service.AddVehicle(c.UserContext(), middleware.Actor(c).UserID, vehicle); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(vehicle)
}

func (h *UserHandler) UpdateVehicle(c *fiber.Ctx) error {
	var req VehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	vehicle := req.vehicle()
	vehicle.ID = c.Params("id")
	if err := h.service.UpdateVehicle(c.UserContext(), middleware.Actor(c).UserID, vehicle); err != nil {
		return err
	}
	return c.JSON(vehicle)
}

func (h *UserHandler) DeleteVehicle(c *fiber.Ctx) error {
	if err := h.service.DeleteVehicle(c.UserContext(), middleware.Actor(c).UserID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
