package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

type FileRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewFileRepository(db *gorm.DB, log *zap.Logger) ports.FileRepository {
	return &FileRepository{db: db, log: log}
}

func (r *FileRepository) Save(ctx context.Context, file *domain.File) error {
	return r.db.WithContext(ctx).Save(file).Error
}

func (r *FileRepository) FindByID(ctx context.Context, id string) (*domain.File, error) {
	var file domain.File
	err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.File{}, "id = ?", id).Error
}
