package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

type BookingRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewBookingRepository(db *gorm.DB, log *zap.Logger) ports.BookingRepository {
	return &BookingRepository{db: db, log: log}
}

// Create inserts a booking. When exclusive is set, the charger row is locked
// for the duration of the transaction so that concurrent requests for the
// same charger serialize, and the insert is refused if an upcoming booking on
// the same connector overlaps [StartTime, EndTime).
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking, exclusive bool) error {
	if !exclusive {
		return translateBookingError(r.db.WithContext(ctx).Create(booking).Error)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var charger domain.Charger
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&charger, "id = ?", booking.ChargerID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrChargerNotFound
			}
			return err
		}

		var overlapping int64
		err = tx.Model(&domain.Booking{}).
			Where("charger_id = ? AND connector_type_id = ? AND status = ?",
				booking.ChargerID, booking.ConnectorTypeID, domain.BookingStatusUpcoming).
			Where("start_time < ? AND end_time > ?", booking.EndTime, booking.StartTime).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return domain.ErrSlotConflict
		}

		return tx.Create(booking).Error
	})

	return translateBookingError(err)
}

// translateBookingError maps a violation of idx_bookings_upcoming_start to a
// slot conflict.
func translateBookingError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrSlotConflict
	}
	return err
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindByDay returns every booking of the day regardless of charger or status
func (r *BookingRepository) FindByDay(ctx context.Context, day time.Time) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := r.db.WithContext(ctx).
		Where("booking_date = ?", day).
		Order("start_time").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) FindByOwner(ctx context.Context, ownerID string, status domain.BookingStatus) ([]domain.Booking, error) {
	var bookings []domain.Booking
	order := "start_time"
	if status != domain.BookingStatusUpcoming {
		order = "start_time DESC"
	}
	err := r.db.WithContext(ctx).
		Where("ev_user_id = ? AND status = ?", ownerID, status).
		Order(order).
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) FindByStation(ctx context.Context, stationID string, day time.Time) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := r.db.WithContext(ctx).
		Where("station_id = ? AND booking_date = ?", stationID, day).
		Order("start_time").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) FindNoShowCandidates(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND arrival_time IS NULL AND end_time < ?", domain.BookingStatusUpcoming, now).
		Order("end_time").
		Limit(500).
		Find(&bookings).Error
	return bookings, err
}

// Update writes the mutable booking columns in a single conditional UPDATE so
// that two transitions racing on the same row cannot both succeed.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking, guard domain.BookingGuard) error {
	query := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", booking.ID, guard.Status)
	if guard.NoArrival {
		query = query.Where("arrival_time IS NULL")
	}

	result := query.Updates(map[string]interface{}{
		"status":       booking.Status,
		"arrival_time": booking.ArrivalTime,
		"cancelled_at": booking.CancelledAt,
		"cost":         booking.Cost,
		"updated_at":   booking.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		r.log.Debug("Conditional booking update matched no row",
			zap.String("booking_id", booking.ID),
			zap.String("expected_status", string(guard.Status)),
		)
		return domain.ErrBookingChanged
	}
	return nil
}

func (r *BookingRepository) CountByStatus(ctx context.Context) (*domain.BookingSummary, error) {
	var rows []struct {
		Status domain.BookingStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Select("status, count(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &domain.BookingSummary{}
	for _, row := range rows {
		switch row.Status {
		case domain.BookingStatusUpcoming:
			summary.Upcoming = row.Count
		case domain.BookingStatusCompleted:
			summary.Completed = row.Count
		case domain.BookingStatusCancelled:
			summary.Cancelled = row.Count
		case domain.BookingStatusNoShow:
			summary.NoShow = row.Count
		}
	}
	return summary, nil
}

// RefreshStationProjection rewrites station, charger and plug names on every
// booking that references the station.
func (r *BookingRepository) RefreshStationProjection(ctx context.Context, station *domain.ChargingStation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Booking{}).
			Where("station_id = ?", station.ID).
			Update("station_name", station.Name).Error
		if err != nil {
			return err
		}

		for _, charger := range station.Chargers {
			err := tx.Model(&domain.Booking{}).
				Where("charger_id = ?", charger.ID).
				Update("charger_name", charger.Name).Error
			if err != nil {
				return err
			}
			for _, ct := range charger.ConnectorTypes {
				err := tx.Model(&domain.Booking{}).
					Where("connector_type_id = ?", ct.ID).
					Update("plug_type", ct.Type).Error
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *BookingRepository) RefreshVehicleProjection(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("vehicle_id = ?", vehicle.ID).
		Update("vehicle_label", vehicle.Label()).Error
}
