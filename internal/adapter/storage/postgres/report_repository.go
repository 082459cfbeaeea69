package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

type ReportRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReportRepository(db *gorm.DB, log *zap.Logger) ports.ReportRepository {
	return &ReportRepository{db: db, log: log}
}

func (r *ReportRepository) Save(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	var report domain.Report
	err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// FindAll lists reports, newest first. Empty arguments do not filter.
func (r *ReportRepository) FindAll(ctx context.Context, status domain.ReportStatus, reporterID string) ([]domain.Report, error) {
	query := r.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if reporterID != "" {
		query = query.Where("reporter_id = ?", reporterID)
	}

	var reports []domain.Report
	err := query.Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) CountByStatus(ctx context.Context, status domain.ReportStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Report{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
