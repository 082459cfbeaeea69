package ports

import (
	"context"
	"io"
	"time"

	"github.com/chargehub/chargehub-api/internal/domain"
)

// Cache is a string key/value store with expiry (Redis or in-memory)
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping() error
	Close() error
}

// TokenPair is returned on login and registration
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*TokenPair, *domain.User, error)
	Register(ctx context.Context, user *domain.User) error
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

// BookingRequest is the input of BookingService.Create
type BookingRequest struct {
	EVUserID        string
	VehicleID       string
	BookingDateTime string
	NoOfSlots       int
	ChargerID       string
	PlugType        string // connector type id or label
}

// Actor identifies who is performing an operation
type Actor struct {
	UserID string
	Role   domain.UserRole
}

// BookingService handles slot bookings and their lifecycle
type BookingService interface {
	Create(ctx context.Context, req *BookingRequest) (*domain.Booking, error)
	Get(ctx context.Context, id string) (*domain.Booking, error)
	GetBookedSlots(ctx context.Context, date string, chargerID string) ([]domain.Slot, error)
	GetUserBookings(ctx context.Context, ownerID string, status domain.BookingStatus) ([]domain.Booking, error)
	GetStationBookings(ctx context.Context, actor Actor, stationID string, day time.Time) ([]domain.Booking, error)
	Cancel(ctx context.Context, id string, actor Actor) (*domain.Booking, error)
	Complete(ctx context.Context, id string, cost *float64) (*domain.Booking, error)
	MarkNoShow(ctx context.Context, id string) (*domain.Booking, error)
	RecordArrival(ctx context.Context, id string) (*domain.Booking, error)
	AttachCost(ctx context.Context, id string, cost float64) (*domain.Booking, error)
	ProcessNoShows(ctx context.Context) (int, error)

	// CheckOperator fails unless actor is staff or owns the booking's station
	CheckOperator(ctx context.Context, actor Actor, bookingID string) error
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged
type ProfileUpdate struct {
	Name          *string
	Phone         *string
	NotifyByEmail *bool
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	SetProfileImage(ctx context.Context, userID, fileID string) error
	AddVehicle(ctx context.Context, ownerID string, vehicle *domain.Vehicle) error
	UpdateVehicle(ctx context.Context, ownerID string, vehicle *domain.Vehicle) error
	ListVehicles(ctx context.Context, ownerID string) ([]domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, ownerID, vehicleID string) error
}

// ChargerInput describes a charger to add to a station
type ChargerInput struct {
	Name           string
	PowerKW        float64
	ConnectorTypes []string
}

type StationService interface {
	Register(ctx context.Context, ownerID string, station *domain.ChargingStation, chargers []ChargerInput) (*domain.ChargingStation, error)
	Get(ctx context.Context, id string) (*domain.ChargingStation, error)
	List(ctx context.Context, filter domain.StationFilter) ([]domain.ChargingStation, error)
	Update(ctx context.Context, actor Actor, station *domain.ChargingStation) (*domain.ChargingStation, error)
	AddCharger(ctx context.Context, actor Actor, stationID string, input ChargerInput) (*domain.Charger, error)
	RemoveCharger(ctx context.Context, actor Actor, stationID, chargerID string) error
	SetImage(ctx context.Context, actor Actor, stationID, fileID string) error
	Review(ctx context.Context, reviewer Actor, stationID string, approve bool, note string) (*domain.ChargingStation, error)
}

type ChatService interface {
	Open(ctx context.Context, userID, participantID, bookingID string) (*domain.Chat, error)
	ListChats(ctx context.Context, userID string) ([]domain.Chat, error)
	Messages(ctx context.Context, userID, chatID string, limit, offset int) ([]domain.Message, error)
	Send(ctx context.Context, userID, chatID, body string) (*domain.Message, error)
}

// NotificationService persists notifications and fans them out
type NotificationService interface {
	Notify(ctx context.Context, userIDs []string, kind domain.NotificationKind, title, body string) error
	NotifyStaff(ctx context.Context, kind domain.NotificationKind, title, body string) error
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type ReportService interface {
	Submit(ctx context.Context, report *domain.Report) (*domain.Report, error)
	ListMine(ctx context.Context, reporterID string) ([]domain.Report, error)
	List(ctx context.Context, status domain.ReportStatus) ([]domain.Report, error)
	Resolve(ctx context.Context, resolver Actor, id, resolution string) (*domain.Report, error)
}

// UploadInput describes an incoming file upload
type UploadInput struct {
	OwnerID     string
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
	Thumbnail   bool
}

type FileService interface {
	Upload(ctx context.Context, input UploadInput) (*domain.File, error)
	Open(ctx context.Context, id string, thumbnail bool) (*domain.File, io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

// AdminService backs the staff console
type AdminService interface {
	GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error)
	PendingStations(ctx context.Context) ([]domain.ChargingStation, error)
	ListUsers(ctx context.Context, filter domain.UserFilter, limit, offset int) ([]domain.User, int64, error)
	UpdateUserStatus(ctx context.Context, id string, status domain.UserStatus) error
	ExportReports(ctx context.Context, status domain.ReportStatus) ([]byte, error)
}
