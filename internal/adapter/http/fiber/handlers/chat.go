package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/pkg/validation"
)

type ChatHandler struct {
	service ports.ChatService
	log     *zap.Logger
}

func NewChatHandler(service ports.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log,
	}
}

func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	chats := router.Group("/chats")
	chats.Get("", h.List)
	chats.Post("", h.Open)
	chats.Get("/:id/messages", h.Messages)
	chats.Post("/:id/messages", h.Send)
}

type OpenChatRequest struct {
	ParticipantID string `json:"participant_id" validate:"required"`
	BookingID     string `json:"booking_id"`
}

type SendMessageRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	chats, err := h.service.ListChats(c.UserContext(), middleware.Actor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(chats)
}

func (h *ChatHandler) Open(c *fiber.Ctx) error {
	var req OpenChatRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	chat, err := h.service.Open(c.UserContext(), middleware.Actor(c).UserID, req.ParticipantID, req.BookingID)
	if err != nil {
		return err
	}
	return c.JSON(chat)
}

func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	messages, err := h.service.Messages(
		c.UserContext(),
		middleware.Actor(c).UserID,
		c.Params("id"),
		c.QueryInt("limit", 50),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		return err
	}
	return c.JSON(messages)
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	msg, err := h.service.Send(c.UserContext(), middleware.Actor(c).UserID, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
