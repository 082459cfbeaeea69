package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/pkg/config"
)

// BlobStore persists raw file content by relative path.
type BlobStore interface {
	Save(ctx context.Context, path string, content io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// Service stores uploads, sniffs their real content type and builds thumbnails
// for images.
type Service struct {
	repo          ports.FileRepository
	store         BlobStore
	maxBytes      int64
	allowed       []string
	thumbnailSize int
	log           *zap.Logger
	now           func() time.Time
}

func NewService(repo ports.FileRepository, store BlobStore, cfg config.StorageConfig, log *zap.Logger) *Service {
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	size := cfg.ThumbnailSize
	if size <= 0 {
		size = 320
	}
	return &Service{
		repo:          repo,
		store:         store,
		maxBytes:      maxBytes,
		allowed:       cfg.AllowedTypes,
		thumbnailSize: size,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Upload(ctx context.Context, input ports.UploadInput) (*domain.File, error) {
	if input.Content == nil {
		return nil, domain.NewValidationError("missing required fields: file")
	}
	if input.Size > s.maxBytes {
		return nil, domain.NewValidationError(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	data, err := io.ReadAll(io.LimitReader(input.Content, s.maxBytes+1))
	if err != nil {
		return nil, domain.NewInternalError("failed to read upload", err)
	}
	if len(data) == 0 {
		return nil, domain.NewValidationError("file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, domain.NewValidationError(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	// The declared content type is ignored in favour of the sniffed one.
	mtype := mimetype.Detect(data)
	if len(s.allowed) > 0 && !mimetype.EqualsAny(mtype.String(), s.allowed...) {
		return nil, domain.NewValidationError(fmt.Sprintf("file type %s is not allowed", mtype.String()))
	}

	now := s.now()
	file := &domain.File{
		ID:          uuid.New().String(),
		OwnerID:     input.OwnerID,
		FileName:    input.FileName,
		ContentType: mtype.String(),
		Size:        int64(len(data)),
		CreatedAt:   now,
	}
	file.Path = fmt.Sprintf("%s/%s%s", now.Format("2006/01"), file.ID, mtype.Extension())

	if err := s.store.Save(ctx, file.Path, bytes.NewReader(data)); err != nil {
		return nil, domain.NewInternalError("failed to store file", err)
	}

	if input.Thumbnail && mimetype.EqualsAny(mtype.String(), "image/jpeg", "image/png", "image/gif") {
		s.storeThumbnail(ctx, file, data)
	}

	if err := s.repo.Save(ctx, file); err != nil {
		s.removeBlobs(ctx, file)
		return nil, domain.NewInternalError("failed to save file", err)
	}

	s.log.Info("file uploaded",
		zap.String("file_id", file.ID),
		zap.String("user_id", file.OwnerID),
		zap.String("content_type", file.ContentType),
		zap.Int64("size", file.Size),
	)
	return file, nil
}

// Open returns the file metadata and its content. With thumbnail set it
// returns the thumbnail instead, failing when none was generated.
func (s *Service) Open(ctx context.Context, id string, thumbnail bool) (*domain.File, io.ReadCloser, error) {
	file, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	path := file.Path
	if thumbnail {
		if file.ThumbnailPath == nil {
			return nil, nil, domain.ErrFileNotFound
		}
		path = *file.ThumbnailPath
		copied := *file
		copied.ContentType = thumbnailContentType
		file = &copied
	}

	rc, err := s.store.Get(ctx, path)
	if err != nil {
		s.log.Error("stored blob unreadable", zap.String("file_id", id), zap.Error(err))
		return nil, nil, domain.Wrap(domain.ErrFileNotFound, err)
	}
	return file, rc, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	file, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.NewInternalError("failed to delete file", err)
	}
	s.removeBlobs(ctx, file)
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.File, error) {
	file, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to load file", err)
	}
	if file == nil {
		return nil, domain.ErrFileNotFound
	}
	return file, nil
}

// storeThumbnail is best effort. A failure leaves the file without a thumbnail.
func (s *Service) storeThumbnail(ctx context.Context, file *domain.File, data []byte) {
	thumb, err := thumbnail(data, s.thumbnailSize)
	if err != nil {
		s.log.Warn("thumbnail generation failed", zap.String("file_id", file.ID), zap.Error(err))
		return
	}

	path := fmt.Sprintf("%s/%s_thumb.jpg", file.CreatedAt.Format("2006/01"), file.ID)
	if err := s.store.Save(ctx, path, bytes.NewReader(thumb)); err != nil {
		s.log.Warn("failed to store thumbnail", zap.String("file_id", file.ID), zap.Error(err))
		return
	}
	file.ThumbnailPath = &path
}

func (s *Service) removeBlobs(ctx context.Context, file *domain.File) {
	paths := []string{file.Path}
	if file.ThumbnailPath != nil {
		paths = append(paths, *file.ThumbnailPath)
	}
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			s.log.Warn("failed to delete blob", zap.String("file_id", file.ID), zap.String("path", p), zap.Error(err))
		}
	}
}

var _ ports.FileService = (*Service)(nil)
