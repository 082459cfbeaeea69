package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/internal/service/auth"
)

// Service manages profiles and the vehicles of EV owners.
type Service struct {
	users    ports.UserRepository
	vehicles ports.VehicleRepository
	bookings ports.BookingRepository
	files    ports.FileRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewService(
	users ports.UserRepository,
	vehicles ports.VehicleRepository,
	bookings ports.BookingRepository,
	files ports.FileRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		users:    users,
		vehicles: vehicles,
		bookings: bookings,
		files:    files,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domain.NewValidationError("name cannot be empty")
		}
		user.Name = name
	}
	if update.Phone != nil {
		user.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.NotifyByEmail != nil {
		user.NotifyByEmail = *update.NotifyByEmail
	}
	user.UpdatedAt = s.now()

	if err := s.users.Save(ctx, user); err != nil {
		return nil, domain.NewInternalError("failed to save user", err)
	}

	s.log.Info("profile updated", zap.String("user_id", user.ID))
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, current) {
		return domain.ErrInvalidCredentials
	}
	if len(next) < auth.MinPasswordLength {
		return domain.NewValidationError("password must be at least 8 characters")
	}

	hashed, err := auth.HashPassword(next)
	if err != nil {
		return domain.NewInternalError("failed to hash password", err)
	}
	user.Password = hashed
	user.UpdatedAt = s.now()

	if err := s.users.Save(ctx, user); err != nil {
		return domain.NewInternalError("failed to save user", err)
	}

	s.log.Info("password changed", zap.String("user_id", user.ID))
	return nil
}

// SetProfileImage points the profile at an uploaded file owned by the user.
func (s *Service) SetProfileImage(ctx context.Context, userID, fileID string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return domain.NewInternalError("failed to load file", err)
	}
	if file == nil || file.OwnerID != userID {
		return domain.ErrFileNotFound
	}

	user.ProfileImageID = file.ID
	user.UpdatedAt = s.now()
	if err := s.users.Save(ctx, user); err != nil {
		return domain.NewInternalError("failed to save user", err)
	}
	return nil
}

func (s *Service) AddVehicle(ctx context.Context, ownerID string, vehicle *domain.Vehicle) error {
	owner, err := s.GetProfile(ctx, ownerID)
	if err != nil {
		return err
	}
	if owner.Role != domain.UserRoleEVOwner {
		return domain.NewForbiddenError("only EV owners can register vehicles")
	}
	if err := validateVehicle(vehicle); err != nil {
		return err
	}

	now := s.now()
	vehicle.ID = uuid.New().String()
	vehicle.OwnerID = ownerID
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	if err := s.vehicles.Save(ctx, vehicle); err != nil {
		return domain.NewInternalError("failed to save vehicle", err)
	}

	s.log.Info("vehicle added", zap.String("user_id", ownerID), zap.String("vehicle_id", vehicle.ID))
	return nil
}

// UpdateVehicle edits a vehicle and rewrites the vehicle label held by its bookings.
func (s *Service) UpdateVehicle(ctx context.Context, ownerID string, vehicle *domain.Vehicle) error {
	existing, err := s.ownedVehicle(ctx, ownerID, vehicle.ID)
	if err != nil {
		return err
	}
	if err := validateVehicle(vehicle); err != nil {
		return err
	}

	existing.Make = vehicle.Make
	existing.Model = vehicle.Model
	existing.PlateNumber = vehicle.PlateNumber
	existing.ConnectorType = vehicle.ConnectorType
	existing.BatteryKWh = vehicle.BatteryKWh
	existing.UpdatedAt = s.now()

	if err := s.vehicles.Save(ctx, existing); err != nil {
		return domain.NewInternalError("failed to save vehicle", err)
	}
	if err := s.bookings.RefreshVehicleProjection(ctx, existing); err != nil {
		s.log.Warn("failed to refresh booking vehicle labels",
			zap.String("vehicle_id", existing.ID),
			zap.Error(err),
		)
	}

	*vehicle = *existing
	return nil
}

func (s *Service) ListVehicles(ctx context.Context, ownerID string) ([]domain.Vehicle, error) {
	vehicles, err := s.vehicles.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list vehicles", err)
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	return vehicles, nil
}

func (s *Service) DeleteVehicle(ctx context.Context, ownerID, vehicleID string) error {
	if _, err := s.ownedVehicle(ctx, ownerID, vehicleID); err != nil {
		return err
	}
	if err := s.vehicles.Delete(ctx, vehicleID); err != nil {
		return domain.NewInternalError("failed to delete vehicle", err)
	}

	s.log.Info("vehicle deleted", zap.String("user_id", ownerID), zap.String("vehicle_id", vehicleID))
	return nil
}

// ownedVehicle hides other users' vehicles behind not found.
func (s *Service) ownedVehicle(ctx context.Context, ownerID, vehicleID string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load vehicle", err)
	}
	if vehicle == nil || vehicle.OwnerID != ownerID {
		return nil, domain.ErrVehicleNotFound
	}
	return vehicle, nil
}

func validateVehicle(v *domain.Vehicle) error {
	v.Make = strings.TrimSpace(v.Make)
	v.Model = strings.TrimSpace(v.Model)
	v.PlateNumber = strings.ToUpper(strings.TrimSpace(v.PlateNumber))

	var missing []string
	if v.Make == "" {
		missing = append(missing, "make")
	}
	if v.Model == "" {
		missing = append(missing, "model")
	}
	if len(missing) > 0 {
		return domain.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	if v.BatteryKWh < 0 {
		return domain.NewValidationError("battery_kwh cannot be negative")
	}
	return nil
}

var _ ports.UserService = (*Service)(nil)
