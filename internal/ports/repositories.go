package ports

import (
	"context"
	"time"

	"github.com/chargehub/chargehub-api/internal/domain"
)

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByRoles(ctx context.Context, roles []domain.UserRole) ([]domain.User, error)
	List(ctx context.Context, filter domain.UserFilter, limit, offset int) ([]domain.User, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
	Count(ctx context.Context) (int64, error)
}

type VehicleRepository interface {
	Save(ctx context.Context, vehicle *domain.Vehicle) error
	FindByID(ctx context.Context, id string) (*domain.Vehicle, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

type StationRepository interface {
	Save(ctx context.Context, station *domain.ChargingStation) error
	FindByID(ctx context.Context, id string) (*domain.ChargingStation, error)
	FindAll(ctx context.Context, filter domain.StationFilter) ([]domain.ChargingStation, error)
	UpdateReview(ctx context.Context, id string, status domain.StationStatus, note, reviewerID string) error
	SaveCharger(ctx context.Context, charger *domain.Charger) error
	FindCharger(ctx context.Context, id string) (*domain.Charger, error)
	DeleteCharger(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status domain.StationStatus) (int64, error)
}

// BookingRepository handles booking persistence. Create enforces that no two
// upcoming bookings overlap on the same charger connector when exclusive is set.
// Update writes only when the stored row still satisfies guard and returns
// domain.ErrBookingChanged otherwise.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking, exclusive bool) error
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	FindByDay(ctx context.Context, day time.Time) ([]domain.Booking, error)
	FindByOwner(ctx context.Context, ownerID string, status domain.BookingStatus) ([]domain.Booking, error)
	FindByStation(ctx context.Context, stationID string, day time.Time) ([]domain.Booking, error)
	FindNoShowCandidates(ctx context.Context, now time.Time) ([]domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking, guard domain.BookingGuard) error
	CountByStatus(ctx context.Context) (*domain.BookingSummary, error)

	// Projection refreshers rewrite the snapshot columns after a referenced entity changes.
	RefreshStationProjection(ctx context.Context, station *domain.ChargingStation) error
	RefreshVehicleProjection(ctx context.Context, vehicle *domain.Vehicle) error
}

type ChatRepository interface {
	FindOrCreate(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, id string) (*domain.Chat, error)
	FindByParticipant(ctx context.Context, userID string) ([]domain.Chat, error)
	SaveMessage(ctx context.Context, msg *domain.Message) error
	FindMessages(ctx context.Context, chatID string, limit, offset int) ([]domain.Message, error)
	MarkRead(ctx context.Context, chatID, readerID string, at time.Time) error
}

type NotificationRepository interface {
	SaveAll(ctx context.Context, notifications []domain.Notification) error
	FindByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type ReportRepository interface {
	Save(ctx context.Context, report *domain.Report) error
	FindByID(ctx context.Context, id string) (*domain.Report, error)
	FindAll(ctx context.Context, status domain.ReportStatus, reporterID string) ([]domain.Report, error)
	CountByStatus(ctx context.Context, status domain.ReportStatus) (int64, error)
}

type FileRepository interface {
	Save(ctx context.Context, file *domain.File) error
	FindByID(ctx context.Context, id string) (*domain.File, error)
	Delete(ctx context.Context, id string) error
}
