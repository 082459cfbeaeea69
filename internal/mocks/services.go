package mocks

import (
	"context"
	"io"
	"time"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	LoginFunc         func(ctx context.Context, email, password string) (*ports.TokenPair, *domain.User, error)
	RegisterFunc      func(ctx context.Context, user *domain.User) error
	RefreshTokenFunc  func(ctx context.Context, refreshToken string) (string, error)
	ValidateTokenFunc func(ctx context.Context, token string) (*domain.User, error)
	LogoutFunc        func(ctx context.Context, token string) error
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, *domain.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, nil, nil
}

func (m *MockAuthService) Register(ctx context.Context, user *domain.User) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, user)
	}
	return nil
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return "", nil
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	CreateFunc             func(ctx context.Context, req *ports.BookingRequest) (*domain.Booking, error)
	GetFunc                func(ctx context.Context, id string) (*domain.Booking, error)
	GetBookedSlotsFunc     func(ctx context.Context, date string, chargerID string) ([]domain.Slot, error)
	GetUserBookingsFunc    func(ctx context.Context, ownerID string, status domain.BookingStatus) ([]domain.Booking, error)
	GetStationBookingsFunc func(ctx context.Context, actor ports.Actor, stationID string, day time.Time) ([]domain.Booking, error)
	CancelFunc             func(ctx context.Context, id string, actor ports.Actor) (*domain.Booking, error)
	CompleteFunc           func(ctx context.Context, id string, cost *float64) (*domain.Booking, error)
	MarkNoShowFunc         func(ctx context.Context, id string) (*domain.Booking, error)
	RecordArrivalFunc      func(ctx context.Context, id string) (*domain.Booking, error)
	AttachCostFunc         func(ctx context.Context, id string, cost float64) (*domain.Booking, error)
	ProcessNoShowsFunc     func(ctx context.Context) (int, error)
	CheckOperatorFunc      func(ctx context.Context, actor ports.Actor, bookingID string) error
}

func (m *MockBookingService) Create(ctx context.Context, req *ports.BookingRequest) (*domain.Booking, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockBookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBookingService) GetBookedSlots(ctx context.Context, date string, chargerID string) ([]domain.Slot, error) {
	if m.GetBookedSlotsFunc != nil {
		return m.GetBookedSlotsFunc(ctx, date, chargerID)
	}
	return []domain.Slot{}, nil
}

func (m *MockBookingService) GetUserBookings(ctx context.Context, ownerID string, status domain.BookingStatus) ([]domain.Booking, error) {
	if m.GetUserBookingsFunc != nil {
		return m.GetUserBookingsFunc(ctx, ownerID, status)
	}
	return []domain.Booking{}, nil
}

func (m *MockBookingService) GetStationBookings(ctx context.Context, actor ports.Actor, stationID string, day time.Time) ([]domain.Booking, error) {
	if m.GetStationBookingsFunc != nil {
		return m.GetStationBookingsFunc(ctx, actor, stationID, day)
	}
	return []domain.Booking{}, nil
}

func (m *MockBookingService) Cancel(ctx context.Context, id string, actor ports.Actor) (*domain.Booking, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, id, actor)
	}
	return nil, nil
}

func (m *MockBookingService) Complete(ctx context.Context, id string, cost *float64) (*domain.Booking, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, id, cost)
	}
	return nil, nil
}

func (m *MockBookingService) MarkNoShow(ctx context.Context, id string) (*domain.Booking, error) {
	if m.MarkNoShowFunc != nil {
		return m.MarkNoShowFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBookingService) RecordArrival(ctx context.Context, id string) (*domain.Booking, error) {
	if m.RecordArrivalFunc != nil {
		return m.RecordArrivalFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBookingService) AttachCost(ctx context.Context, id string, cost float64) (*domain.Booking, error) {
	if m.AttachCostFunc != nil {
		return m.AttachCostFunc(ctx, id, cost)
	}
	return nil, nil
}

func (m *MockBookingService) ProcessNoShows(ctx context.Context) (int, error) {
	if m.ProcessNoShowsFunc != nil {
		return m.ProcessNoShowsFunc(ctx)
	}
	return 0, nil
}

func (m *MockBookingService) CheckOperator(ctx context.Context, actor ports.Actor, bookingID string) error {
	if m.CheckOperatorFunc != nil {
		return m.CheckOperatorFunc(ctx, actor, bookingID)
	}
	return nil
}

// MockChatService is a mock implementation of ChatService
type MockChatService struct {
	OpenFunc      func(ctx context.Context, userID, participantID, bookingID string) (*domain.Chat, error)
	ListChatsFunc func(ctx context.Context, userID string) ([]domain.Chat, error)
	MessagesFunc  func(ctx context.Context, userID, chatID string, limit, offset int) ([]domain.Message, error)
	SendFunc      func(ctx context.Context, userID, chatID, body string) (*domain.Message, error)
}

func (m *MockChatService) Open(ctx context.Context, userID, participantID, bookingID string) (*domain.Chat, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, userID, participantID, bookingID)
	}
	return nil, nil
}

func (m *MockChatService) ListChats(ctx context.Context, userID string) ([]domain.Chat, error) {
	if m.ListChatsFunc != nil {
		return m.ListChatsFunc(ctx, userID)
	}
	return []domain.Chat{}, nil
}

func (m *MockChatService) Messages(ctx context.Context, userID, chatID string, limit, offset int) ([]domain.Message, error) {
	if m.MessagesFunc != nil {
		return m.MessagesFunc(ctx, userID, chatID, limit, offset)
	}
	return []domain.Message{}, nil
}

func (m *MockChatService) Send(ctx context.Context, userID, chatID, body string) (*domain.Message, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, userID, chatID, body)
	}
	return nil, nil
}

// MockNotificationService is a mock implementation of NotificationService
type MockNotificationService struct {
	NotifyFunc      func(ctx context.Context, userIDs []string, kind domain.NotificationKind, title, body string) error
	NotifyStaffFunc func(ctx context.Context, kind domain.NotificationKind, title, body string) error
	ListFunc        func(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkReadFunc    func(ctx context.Context, userID, id string) error
	MarkAllReadFunc func(ctx context.Context, userID string) error
}

func (m *MockNotificationService) Notify(ctx context.Context, userIDs []string, kind domain.NotificationKind, title, body string) error {
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, userIDs, kind, title, body)
	}
	return nil
}

func (m *MockNotificationService) NotifyStaff(ctx context.Context, kind domain.NotificationKind, title, body string) error {
	if m.NotifyStaffFunc != nil {
		return m.NotifyStaffFunc(ctx, kind, title, body)
	}
	return nil
}

func (m *MockNotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, unreadOnly, limit, offset)
	}
	return []domain.Notification{}, nil
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return nil
}

// MockStationService is a mock implementation of StationService
type MockStationService struct {
	RegisterFunc      func(ctx context.Context, ownerID string, station *domain.ChargingStation, chargers []ports.ChargerInput) (*domain.ChargingStation, error)
	GetFunc           func(ctx context.Context, id string) (*domain.ChargingStation, error)
	ListFunc          func(ctx context.Context, filter domain.StationFilter) ([]domain.ChargingStation, error)
	UpdateFunc        func(ctx context.Context, actor ports.Actor, station *domain.ChargingStation) (*domain.ChargingStation, error)
	AddChargerFunc    func(ctx context.Context, actor ports.Actor, stationID string, input ports.ChargerInput) (*domain.Charger, error)
	RemoveChargerFunc func(ctx context.Context, actor ports.Actor, stationID, chargerID string) error
	SetImageFunc      func(ctx context.Context, actor ports.Actor, stationID, fileID string) error
	ReviewFunc        func(ctx context.Context, reviewer ports.Actor, stationID string, approve bool, note string) (*domain.ChargingStation, error)
}

func (m *MockStationService) Register(ctx context.Context, ownerID string, station *domain.ChargingStation, chargers []ports.ChargerInput) (*domain.ChargingStation, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, ownerID, station, chargers)
	}
	return station, nil
}

func (m *MockStationService) Get(ctx context.Context, id string) (*domain.ChargingStation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStationService) List(ctx context.Context, filter domain.StationFilter) ([]domain.ChargingStation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []domain.ChargingStation{}, nil
}

func (m *MockStationService) Update(ctx context.Context, actor ports.Actor, station *domain.ChargingStation) (*domain.ChargingStation, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, station)
	}
	return station, nil
}

func (m *MockStationService) AddCharger(ctx context.Context, actor ports.Actor, stationID string, input ports.ChargerInput) (*domain.Charger, error) {
	if m.AddChargerFunc != nil {
		return m.AddChargerFunc(ctx, actor, stationID, input)
	}
	return nil, nil
}

func (m *MockStationService) RemoveCharger(ctx context.Context, actor ports.Actor, stationID, chargerID string) error {
	if m.RemoveChargerFunc != nil {
		return m.RemoveChargerFunc(ctx, actor, stationID, chargerID)
	}
	return nil
}

func (m *MockStationService) SetImage(ctx context.Context, actor ports.Actor, stationID, fileID string) error {
	if m.SetImageFunc != nil {
		return m.SetImageFunc(ctx, actor, stationID, fileID)
	}
	return nil
}

func (m *MockStationService) Review(ctx context.Context, reviewer ports.Actor, stationID string, approve bool, note string) (*domain.ChargingStation, error) {
	if m.ReviewFunc != nil {
		return m.ReviewFunc(ctx, reviewer, stationID, approve, note)
	}
	return nil, nil
}

// MockFileService is a mock implementation of FileService
type MockFileService struct {
	UploadFunc func(ctx context.Context, input ports.UploadInput) (*domain.File, error)
	OpenFunc   func(ctx context.Context, id string, thumbnail bool) (*domain.File, io.ReadCloser, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockFileService) Upload(ctx context.Context, input ports.UploadInput) (*domain.File, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, input)
	}
	return nil, nil
}

func (m *MockFileService) Open(ctx context.Context, id string, thumbnail bool) (*domain.File, io.ReadCloser, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, id, thumbnail)
	}
	return nil, nil, nil
}

func (m *MockFileService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	GetProfileFunc      func(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfileFunc   func(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error)
	ChangePasswordFunc  func(ctx context.Context, userID, current, next string) error
	SetProfileImageFunc func(ctx context.Context, userID, fileID string) error
	AddVehicleFunc      func(ctx context.Context, ownerID string, vehicle *domain.Vehicle) error
	UpdateVehicleFunc   func(ctx context.Context, ownerID string, vehicle *domain.Vehicle) error
	ListVehiclesFunc    func(ctx context.Context, ownerID string) ([]domain.Vehicle, error)
	DeleteVehicleFunc   func(ctx context.Context, ownerID, vehicleID string) error
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, update)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, current, next)
	}
	return nil
}

func (m *MockUserService) SetProfileImage(ctx context.Context, userID, fileID string) error {
	if m.SetProfileImageFunc != nil {
		return m.SetProfileImageFunc(ctx, userID, fileID)
	}
	return nil
}

func (m *MockUserService) AddVehicle(ctx context.Context, ownerID string, vehicle *domain.Vehicle) error {
	if m.AddVehicleFunc != nil {
		return m.AddVehicleFunc(ctx, ownerID, vehicle)
	}
	return nil
}

func (m *MockUserService) UpdateVehicle(ctx context.Context, ownerID string, vehicle *domain.Vehicle) error {
	if m.UpdateVehicleFunc != nil {
		return m.UpdateVehicleFunc(ctx, ownerID, vehicle)
	}
	return nil
}

func (m *MockUserService) ListVehicles(ctx context.Context, ownerID string) ([]domain.Vehicle, error) {
	if m.ListVehiclesFunc != nil {
		return m.ListVehiclesFunc(ctx, ownerID)
	}
	return []domain.Vehicle{}, nil
}

func (m *MockUserService) DeleteVehicle(ctx context.Context, ownerID, vehicleID string) error {
	if m.DeleteVehicleFunc != nil {
		return m.DeleteVehicleFunc(ctx, ownerID, vehicleID)
	}
	return nil
}

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	SubmitFunc   func(ctx context.Context, report *domain.Report) (*domain.Report, error)
	ListMineFunc func(ctx context.Context, reporterID string) ([]domain.Report, error)
	ListFunc     func(ctx context.Context, status domain.ReportStatus) ([]domain.Report, error)
	ResolveFunc  func(ctx context.Context, resolver ports.Actor, id, resolution string) (*domain.Report, error)
}

func (m *MockReportService) Submit(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, report)
	}
	return report, nil
}

func (m *MockReportService) ListMine(ctx context.Context, reporterID string) ([]domain.Report, error) {
	if m.ListMineFunc != nil {
		return m.ListMineFunc(ctx, reporterID)
	}
	return []domain.Report{}, nil
}

func (m *MockReportService) List(ctx context.Context, status domain.ReportStatus) ([]domain.Report, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status)
	}
	return []domain.Report{}, nil
}

func (m *MockReportService) Resolve(ctx context.Context, resolver ports.Actor, id, resolution string) (*domain.Report, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, resolver, id, resolution)
	}
	return nil, domain.ErrReportNotFound
}

// MockAdminService is a mock implementation of AdminService
type MockAdminService struct {
	GetDashboardStatsFunc func(ctx context.Context) (*domain.DashboardStats, error)
	PendingStationsFunc   func(ctx context.Context) ([]domain.ChargingStation, error)
	ListUsersFunc         func(ctx context.Context, filter domain.UserFilter, limit, offset int) ([]domain.User, int64, error)
	UpdateUserStatusFunc  func(ctx context.Context, id string, status domain.UserStatus) error
	ExportReportsFunc     func(ctx context.Context, status domain.ReportStatus) ([]byte, error)
}

func (m *MockAdminService) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	if m.GetDashboardStatsFunc != nil {
		return m.GetDashboardStatsFunc(ctx)
	}
	return &domain.DashboardStats{}, nil
}

func (m *MockAdminService) PendingStations(ctx context.Context) ([]domain.ChargingStation, error) {
	if m.PendingStationsFunc != nil {
		return m.PendingStationsFunc(ctx)
	}
	return []domain.ChargingStation{}, nil
}

func (m *MockAdminService) ListUsers(ctx context.Context, filter domain.UserFilter, limit, offset int) ([]domain.User, int64, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, filter, limit, offset)
	}
	return []domain.User{}, 0, nil
}

func (m *MockAdminService) UpdateUserStatus(ctx context.Context, id string, status domain.UserStatus) error {
	if m.UpdateUserStatusFunc != nil {
		return m.UpdateUserStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockAdminService) ExportReports(ctx context.Context, status domain.ReportStatus) ([]byte, error) {
	if m.ExportReportsFunc != nil {
		return m.ExportReportsFunc(ctx, status)
	}
	return nil, nil
}
