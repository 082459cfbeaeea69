package handlers

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

type FileHandler struct {
	service ports.FileService
	log     *zap.Logger
}

func NewFileHandler(service ports.FileService, log *zap.Logger) *FileHandler {
	return &FileHandler{
		service: service,
		log:     log,
	}
}

func (h *FileHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/files", h.Upload)
	router.Get("/files/:id", h.Download)
	router.Get("/files/:id/thumbnail", h.Thumbnail)
}

// Upload handles multipart uploads with a "file" part. Set form field
// "thumbnail=true" to also build a thumbnail for images.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("missing required fields: file")
	}
	thumbnail, _ := strconv.ParseBool(c.FormValue("thumbnail"))

	file, err := uploadForm(c, h.service, middleware.Actor(c).UserID, header, thumbnail)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}

func (h *FileHandler) Download(c *fiber.Ctx) error {
	return h.send(c, false)
}

func (h *FileHandler) Thumbnail(c *fiber.Ctx) error {
	return h.send(c, true)
}

func (h *FileHandler) send(c *fiber.Ctx, thumbnail bool) error {
	file, content, err := h.service.Open(c.UserContext(), c.Params("id"), thumbnail)
	if err != nil {
		return err
	}

	size := -1
	if !thumbnail {
		size = int(file.Size)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=86400")
	return c.SendStream(content, size)
}

func uploadForm(c *fiber.Ctx, files ports.FileService, ownerID string, header *multipart.FileHeader, thumbnail bool) (*domain.File, error) {
	src, err := header.Open()
	if err != nil {
		return nil, domain.NewValidationError("unreadable upload")
	}
	defer src.Close()

	return files.Upload(c.UserContext(), ports.UploadInput{
		OwnerID:     ownerID,
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Content:     src,
		Thumbnail:   thumbnail,
	})
}
