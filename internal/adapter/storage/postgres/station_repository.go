package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

type StationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStationRepository(db *gorm.DB, log *zap.Logger) ports.StationRepository {
	return &StationRepository{db: db, log: log}
}

// Save upserts the station together with its chargers and connector types
func (r *StationRepository) Save(ctx context.Context, station *domain.ChargingStation) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(station).Error
}

func (r *StationRepository) FindByID(ctx context.Context, id string) (*domain.ChargingStation, error) {
	var station domain.ChargingStation
	err := r.withChargers(ctx).First(&station, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &station, nil
}

func (r *StationRepository) FindAll(ctx context.Context, filter domain.StationFilter) ([]domain.ChargingStation, error) {
	query := r.withChargers(ctx)
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.City != "" {
		query = query.Where("city ILIKE ?", filter.City)
	}

	var stations []domain.ChargingStation
	err := query.Order("created_at DESC").Find(&stations).Error
	return stations, err
}

func (r *StationRepository) UpdateReview(ctx context.Context, id string, status domain.StationStatus, note, reviewerID string) error {
	result := r.db.WithContext(ctx).Model(&domain.ChargingStation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"review_note": note,
		"reviewed_by": reviewerID,
		"reviewed_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrStationNotFound
	}
	return nil
}

func (r *StationRepository) SaveCharger(ctx context.Context, charger *domain.Charger) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(charger).Error
}

func (r *StationRepository) FindCharger(ctx context.Context, id string) (*domain.Charger, error) {
	var charger domain.Charger
	err := r.db.WithContext(ctx).Preload("ConnectorTypes").First(&charger, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &charger, nil
}

func (r *StationRepository) DeleteCharger(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.ConnectorType{}, "charger_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Charger{}, "id = ?", id).Error
	})
}

func (r *StationRepository) CountByStatus(ctx context.Context, status domain.StationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ChargingStation{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *StationRepository) withChargers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Chargers", func(db *gorm.DB) *gorm.DB { return db.Order("chargers.created_at") }).
		Preload("Chargers.ConnectorTypes")
}
