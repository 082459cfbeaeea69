package mocks

import (
	"context"
	"time"

	"github.com/chargehub/chargehub-api/internal/domain"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	SaveFunc         func(ctx context.Context, user *domain.User) error
	FindByIDFunc     func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc  func(ctx context.Context, email string) (*domain.User, error)
	FindByRolesFunc  func(ctx context.Context, roles []domain.UserRole) ([]domain.User, error)
	ListFunc         func(ctx context.Context, filter domain.UserFilter, limit, offset int) ([]domain.User, int64, error)
	UpdateStatusFunc func(ctx context.Context, id string, status domain.UserStatus) error
	CountFunc        func(ctx context.Context) (int64, error)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByRoles(ctx context.Context, roles []domain.UserRole) ([]domain.User, error) {
	if m.FindByRolesFunc != nil {
		return m.FindByRolesFunc(ctx, roles)
	}
	return []domain.User{}, nil
}

func (m *MockUserRepository) List(ctx context.Context, filter domain.UserFilter, limit, offset int) ([]domain.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, limit, offset)
	}
	return []domain.User{}, 0, nil
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// MockVehicleRepository is a mock implementation of VehicleRepository
type MockVehicleRepository struct {
	SaveFunc        func(ctx context.Context, vehicle *domain.Vehicle) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.Vehicle, error)
	FindByOwnerFunc func(ctx context.Context, ownerID string) ([]domain.Vehicle, error)
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *MockVehicleRepository) Save(ctx context.Context, vehicle *domain.Vehicle) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, vehicle)
	}
	return nil
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockVehicleRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.Vehicle, error) {
	if m.FindByOwnerFunc != nil {
		return m.FindByOwnerFunc(ctx, ownerID)
	}
	return []domain.Vehicle{}, nil
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockStationRepository is a mock implementation of StationRepository
type MockStationRepository struct {
	SaveFunc          func(ctx context.Context, station *domain.ChargingStation) error
	FindByIDFunc      func(ctx context.Context, id string) (*domain.ChargingStation, error)
	FindAllFunc       func(ctx context.Context, filter domain.StationFilter) ([]domain.ChargingStation, error)
	UpdateReviewFunc  func(ctx context.Context, id string, status domain.StationStatus, note, reviewerID string) error
	SaveChargerFunc   func(ctx context.Context, charger *domain.Charger) error
	FindChargerFunc   func(ctx context.Context, id string) (*domain.Charger, error)
	DeleteChargerFunc func(ctx context.Context, id string) error
	CountByStatusFunc func(ctx context.Context, status domain.StationStatus) (int64, error)
}

func (m *MockStationRepository) Save(ctx context.Context, station *domain.ChargingStation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, station)
	}
	return nil
}

func (m *MockStationRepository) FindByID(ctx context.Context, id string) (*domain.ChargingStation, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStationRepository) FindAll(ctx context.Context, filter domain.StationFilter) ([]domain.ChargingStation, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return []domain.ChargingStation{}, nil
}

func (m *MockStationRepository) UpdateReview(ctx context.Context, id string, status domain.StationStatus, note, reviewerID string) error {
	if m.UpdateReviewFunc != nil {
		return m.UpdateReviewFunc(ctx, id, status, note, reviewerID)
	}
	return nil
}

func (m *MockStationRepository) SaveCharger(ctx context.Context, charger *domain.Charger) error {
	if m.SaveChargerFunc != nil {
		return m.SaveChargerFunc(ctx, charger)
	}
	return nil
}

func (m *MockStationRepository) FindCharger(ctx context.Context, id string) (*domain.Charger, error) {
	if m.FindChargerFunc != nil {
		return m.FindChargerFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStationRepository) DeleteCharger(ctx context.Context, id string) error {
	if m.DeleteChargerFunc != nil {
		return m.DeleteChargerFunc(ctx, id)
	}
	return nil
}

func (m *MockStationRepository) CountByStatus(ctx context.Context, status domain.StationStatus) (int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, status)
	}
	return 0, nil
}

// MockBookingRepository is a mock implementation of BookingRepository
type MockBookingRepository struct {
	CreateFunc                   func(ctx context.Context, booking *domain.Booking, exclusive bool) error
	FindByIDFunc                 func(ctx context.Context, id string) (*domain.Booking, error)
	FindByDayFunc                func(ctx context.Context, day time.Time) ([]domain.Booking, error)
	FindByOwnerFunc              func(ctx context.Context, ownerID string, status domain.BookingStatus) ([]domain.Booking, error)
	FindByStationFunc            func(ctx context.Context, stationID string, day time.Time) ([]domain.Booking, error)
	FindNoShowCandidatesFunc     func(ctx context.Context, now time.Time) ([]domain.Booking, error)
	UpdateFunc                   func(ctx context.Context, booking *domain.Booking, guard domain.BookingGuard) error
	CountByStatusFunc            func(ctx context.Context) (*domain.BookingSummary, error)
	RefreshStationProjectionFunc func(ctx context.Context, station *domain.ChargingStation) error
	RefreshVehicleProjectionFunc func(ctx context.Context, vehicle *domain.Vehicle) error
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking, exclusive bool) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, booking, exclusive)
	}
	return nil
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBookingRepository) FindByDay(ctx context.Context, day time.Time) ([]domain.Booking, error) {
	if m.FindByDayFunc != nil {
		return m.FindByDayFunc(ctx, day)
	}
	return []domain.Booking{}, nil
}

func (m *MockBookingRepository) FindByOwner(ctx context.Context, ownerID string, status domain.BookingStatus) ([]domain.Booking, error) {
	if m.FindByOwnerFunc != nil {
		return m.FindByOwnerFunc(ctx, ownerID, status)
	}
	return []domain.Booking{}, nil
}

func (m *MockBookingRepository) FindByStation(ctx context.Context, stationID string, day time.Time) ([]domain.Booking, error) {
	if m.FindByStationFunc != nil {
		return m.FindByStationFunc(ctx, stationID, day)
	}
	return []domain.Booking{}, nil
}

func (m *MockBookingRepository) FindNoShowCandidates(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	if m.FindNoShowCandidatesFunc != nil {
		return m.FindNoShowCandidatesFunc(ctx, now)
	}
	return []domain.Booking{}, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking, guard domain.BookingGuard) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, booking, guard)
	}
	return nil
}

func (m *MockBookingRepository) CountByStatus(ctx context.Context) (*domain.BookingSummary, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx)
	}
	return &domain.BookingSummary{}, nil
}

func (m *MockBookingRepository) RefreshStationProjection(ctx context.Context, station *domain.ChargingStation) error {
	if m.RefreshStationProjectionFunc != nil {
		return m.RefreshStationProjectionFunc(ctx, station)
	}
	return nil
}

func (m *MockBookingRepository) RefreshVehicleProjection(ctx context.Context, vehicle *domain.Vehicle) error {
	if m.RefreshVehicleProjectionFunc != nil {
		return m.RefreshVehicleProjectionFunc(ctx, vehicle)
	}
	return nil
}

// MockChatRepository is a mock implementation of ChatRepository
type MockChatRepository struct {
	FindOrCreateFunc      func(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByIDFunc          func(ctx context.Context, id string) (*domain.Chat, error)
	FindByParticipantFunc func(ctx context.Context, userID string) ([]domain.Chat, error)
	SaveMessageFunc       func(ctx context.Context, msg *domain.Message) error
	FindMessagesFunc      func(ctx context.Context, chatID string, limit, offset int) ([]domain.Message, error)
	MarkReadFunc          func(ctx context.Context, chatID, readerID string, at time.Time) error
}

func (m *MockChatRepository) FindOrCreate(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if m.FindOrCreateFunc != nil {
		return m.FindOrCreateFunc(ctx, chat)
	}
	return chat, nil
}

func (m *MockChatRepository) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockChatRepository) FindByParticipant(ctx context.Context, userID string) ([]domain.Chat, error) {
	if m.FindByParticipantFunc != nil {
		return m.FindByParticipantFunc(ctx, userID)
	}
	return []domain.Chat{}, nil
}

func (m *MockChatRepository) SaveMessage(ctx context.Context, msg *domain.Message) error {
	if m.SaveMessageFunc != nil {
		return m.SaveMessageFunc(ctx, msg)
	}
	return nil
}

func (m *MockChatRepository) FindMessages(ctx context.Context, chatID string, limit, offset int) ([]domain.Message, error) {
	if m.FindMessagesFunc != nil {
		return m.FindMessagesFunc(ctx, chatID, limit, offset)
	}
	return []domain.Message{}, nil
}

func (m *MockChatRepository) MarkRead(ctx context.Context, chatID, readerID string, at time.Time) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, chatID, readerID, at)
	}
	return nil
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	SaveAllFunc     func(ctx context.Context, notifications []domain.Notification) error
	FindByUserFunc  func(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkReadFunc    func(ctx context.Context, id, userID string) error
	MarkAllReadFunc func(ctx context.Context, userID string) error
}

func (m *MockNotificationRepository) SaveAll(ctx context.Context, notifications []domain.Notification) error {
	if m.SaveAllFunc != nil {
		return m.SaveAllFunc(ctx, notifications)
	}
	return nil
}

func (m *MockNotificationRepository) FindByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID, unreadOnly, limit, offset)
	}
	return []domain.Notification{}, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, id, userID)
	}
	return nil
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return nil
}

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	SaveFunc          func(ctx context.Context, report *domain.Report) error
	FindByIDFunc      func(ctx context.Context, id string) (*domain.Report, error)
	FindAllFunc       func(ctx context.Context, status domain.ReportStatus, reporterID string) ([]domain.Report, error)
	CountByStatusFunc func(ctx context.Context, status domain.ReportStatus) (int64, error)
}

func (m *MockReportRepository) Save(ctx context.Context, report *domain.Report) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, report)
	}
	return nil
}

func (m *MockReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReportRepository) FindAll(ctx context.Context, status domain.ReportStatus, reporterID string) ([]domain.Report, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, status, reporterID)
	}
	return []domain.Report{}, nil
}

func (m *MockReportRepository) CountByStatus(ctx context.Context, status domain.ReportStatus) (int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, status)
	}
	return 0, nil
}

// MockFileRepository is a mock implementation of FileRepository
type MockFileRepository struct {
	SaveFunc     func(ctx context.Context, file *domain.File) error
	FindByIDFunc func(ctx context.Context, id string) (*domain.File, error)
	DeleteFunc   func(ctx context.Context, id string) error
}

func (m *MockFileRepository) Save(ctx context.Context, file *domain.File) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, file)
	}
	return nil
}

func (m *MockFileRepository) FindByID(ctx context.Context, id string) (*domain.File, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockFileRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
