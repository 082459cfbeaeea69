package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/pkg/validation"
)

type ReportHandler struct {
	service ports.ReportService
	log     *zap.Logger
}

func NewReportHandler(service ports.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/reports", h.Submit)
	router.Get("/reports/mine", h.ListMine)
}

type ReportRequest struct {
	Subject     string `json:"subject" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	StationID   string `json:"station_id"`
	BookingID   string `json:"booking_id"`
}

func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	var req ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	report, err := h.service.Submit(c.UserContext(), &domain.Report{
		ReporterID:  middleware.Actor(c).UserID,
		Subject:     req.Subject,
		Description: req.Description,
		StationID:   req.StationID,
		BookingID:   req.BookingID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) ListMine(c *fiber.Ctx) error {
	reports, err := h.service.ListMine(c.UserContext(), middleware.Actor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(reports)
}
