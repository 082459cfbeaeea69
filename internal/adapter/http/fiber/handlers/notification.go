package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/ports"
)

type NotificationHandler struct {
	service ports.NotificationService
	log     *zap.Logger
}

func NewNotificationHandler(service ports.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log,
	}
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notifications := router.Group("/notifications")
	notifications.Get("", h.List)
	notifications.Patch("/read-all", h.MarkAllRead)
	notifications.Patch("/:id/read", h.MarkRead)
}

// List handles GET /notifications?unread=true&limit=20&offset=0
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	notifications, err := h.service.List(
		c.UserContext(),
		middleware.Actor(c).UserID,
		c.QueryBool("unread", false),
		c.QueryInt("limit", 20),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		return err
	}
	return c.JSON(notifications)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.service.MarkRead(c.UserContext(), middleware.Actor(c).UserID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.service.MarkAllRead(c.UserContext(), middleware.Actor(c).UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
