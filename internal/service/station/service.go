package station

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/observability/telemetry"
	"github.com/chargehub/chargehub-api/internal/ports"
)

// Service manages charging stations, their chargers and the staff review flow.
type Service struct {
	repo     ports.StationRepository
	users    ports.UserRepository
	bookings ports.BookingRepository
	files    ports.FileRepository
	notifier ports.NotificationService
	log      *zap.Logger
	now      func() time.Time
}

func NewService(
	repo ports.StationRepository,
	users ports.UserRepository,
	bookings ports.BookingRepository,
	files ports.FileRepository,
	notifier ports.NotificationService,
	log *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		bookings: bookings,
		files:    files,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register submits a new station for review. It starts in pending status.
func (s *Service) Register(ctx context.Context, ownerID string, station *domain.ChargingStation, chargers []ports.ChargerInput) (*domain.ChargingStation, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load owner", err)
	}
	if owner == nil {
		return nil, domain.ErrUserNotFound
	}
	if owner.Role != domain.UserRoleStationOwner {
		return nil, domain.NewForbiddenError("only station owners can register stations")
	}

	if err := validateStation(station); err != nil {
		return nil, err
	}
	if len(chargers) == 0 {
		return nil, domain.NewValidationError("a station needs at least one charger")
	}

	now := s.now()
	station.ID = uuid.New().String()
	station.OwnerID = ownerID
	station.Status = domain.StationStatusPending
	station.ReviewNote = ""
	station.ReviewedBy = ""
	station.ReviewedAt = nil
	station.CreatedAt = now
	station.UpdatedAt = now
	station.Chargers = make([]domain.Charger, 0, len(chargers))
	for _, input := range chargers {
		charger, err := s.newCharger(station.ID, input)
		if err != nil {
			return nil, err
		}
		station.Chargers = append(station.Chargers, *charger)
	}

	if err := s.repo.Save(ctx, station); err != nil {
		return nil, domain.NewInternalError("failed to save station", err)
	}

	s.log.Info("station registered",
		zap.String("station_id", station.ID),
		zap.String("owner_id", ownerID),
		zap.Int("chargers", len(station.Chargers)),
	)

	title := "New charging station awaiting review"
	body := fmt.Sprintf("%s in %s was submitted for approval.", station.Name, station.City)
	if err := s.notifier.NotifyStaff(ctx, domain.NotificationStationSubmitted, title, body); err != nil {
		s.log.Warn("failed to notify staff", zap.String("station_id", station.ID), zap.Error(err))
	}

	return station, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ChargingStation, error) {
	station, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to load station", err)
	}
	if station == nil {
		return nil, domain.ErrStationNotFound
	}
	return station, nil
}

func (s *Service) List(ctx context.Context, filter domain.StationFilter) ([]domain.ChargingStation, error) {
	filter.City = strings.TrimSpace(filter.City)
	stations, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError("failed to list stations", err)
	}
	if stations == nil {
		stations = []domain.ChargingStation{}
	}
	return stations, nil
}

// Update changes the descriptive fields of a station. Review state and
// chargers are left untouched.
func (s *Service) Update(ctx context.Context, actor ports.Actor, update *domain.ChargingStation) (*domain.ChargingStation, error) {
	station, err := s.authorized(ctx, actor, update.ID)
	if err != nil {
		return nil, err
	}
	if err := validateStation(update); err != nil {
		return nil, err
	}

	station.Name = update.Name
	station.Address = update.Address
	station.City = update.City
	station.Latitude = update.Latitude
	station.Longitude = update.Longitude
	station.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, station); err != nil {
		return nil, domain.NewInternalError("failed to save station", err)
	}
	s.refreshProjection(ctx, station)
	return station, nil
}

func (s *Service) AddCharger(ctx context.Context, actor ports.Actor, stationID string, input ports.ChargerInput) (*domain.Charger, error) {
	station, err := s.authorized(ctx, actor, stationID)
	if err != nil {
		return nil, err
	}

	charger, err := s.newCharger(station.ID, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveCharger(ctx, charger); err != nil {
		return nil, domain.NewInternalError("failed to save charger", err)
	}

	s.log.Info("charger added", zap.String("station_id", station.ID), zap.String("charger_id", charger.ID))
	return charger, nil
}

func (s *Service) RemoveCharger(ctx context.Context, actor ports.Actor, stationID, chargerID string) error {
	station, err := s.authorized(ctx, actor, stationID)
	if err != nil {
		return err
	}

	charger, err := s.repo.FindCharger(ctx, chargerID)
	if err != nil {
		return domain.NewInternalError("failed to load charger", err)
	}
	if charger == nil || charger.StationID != station.ID {
		return domain.ErrChargerNotFound
	}
	if err := s.repo.DeleteCharger(ctx, chargerID); err != nil {
		return domain.NewInternalError("failed to delete charger", err)
	}

	s.log.Info("charger removed", zap.String("station_id", station.ID), zap.String("charger_id", chargerID))
	return nil
}

// SetImage attaches an uploaded file as the station picture.
func (s *Service) SetImage(ctx context.Context, actor ports.Actor, stationID, fileID string) error {
	station, err := s.authorized(ctx, actor, stationID)
	if err != nil {
		return err
	}

	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return domain.NewInternalError("failed to load file", err)
	}
	if file == nil || file.OwnerID != actor.UserID {
		return domain.ErrFileNotFound
	}
	if !strings.HasPrefix(file.ContentType, "image/") {
		return domain.NewValidationError("station image must be an image")
	}

	station.ImageID = file.ID
	station.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, station); err != nil {
		return domain.NewInternalError("failed to save station", err)
	}
	return nil
}

// Review approves or rejects a station. Only staff may review; a rejection
// needs a note for the owner.
func (s *Service) Review(ctx context.Context, reviewer ports.Actor, stationID string, approve bool, note string) (*domain.ChargingStation, error) {
	if !reviewer.Role.IsStaff() {
		return nil, domain.ErrPermissionDenied
	}
	note = strings.TrimSpace(note)
	if !approve && note == "" {
		return nil, domain.NewValidationError("a rejection needs a review note")
	}

	station, err := s.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}

	status, decision := domain.StationStatusApproved, "approved"
	if !approve {
		status, decision = domain.StationStatusRejected, "rejected"
	}
	if err := s.repo.UpdateReview(ctx, station.ID, status, note, reviewer.UserID); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, err
		}
		return nil, domain.NewInternalError("failed to update review", err)
	}

	reviewedAt := s.now()
	station.Status = status
	station.ReviewNote = note
	station.ReviewedBy = reviewer.UserID
	station.ReviewedAt = &reviewedAt
	telemetry.StationReviewsTotal.WithLabelValues(decision).Inc()

	s.log.Info("station reviewed",
		zap.String("station_id", station.ID),
		zap.String("decision", decision),
		zap.String("reviewer_id", reviewer.UserID),
	)

	body := fmt.Sprintf("Your station %s was %s.", station.Name, decision)
	if note != "" {
		body += " Note: " + note
	}
	if err := s.notifier.Notify(ctx, []string{station.OwnerID}, domain.NotificationStationReviewed, "Station review", body); err != nil {
		s.log.Warn("failed to notify station owner", zap.String("station_id", station.ID), zap.Error(err))
	}
	s.refreshProjection(ctx, station)

	return station, nil
}

// authorized loads the station and checks actor is staff or its owner.
func (s *Service) authorized(ctx context.Context, actor ports.Actor, stationID string) (*domain.ChargingStation, error) {
	station, err := s.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && station.OwnerID != actor.UserID {
		return nil, domain.ErrPermissionDenied
	}
	return station, nil
}

func (s *Service) refreshProjection(ctx context.Context, station *domain.ChargingStation) {
	if err := s.bookings.RefreshStationProjection(ctx, station); err != nil {
		s.log.Warn("failed to refresh booking projection", zap.String("station_id", station.ID), zap.Error(err))
	}
}

func (s *Service) newCharger(stationID string, input ports.ChargerInput) (*domain.Charger, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewValidationError("missing required fields: charger name")
	}
	if input.PowerKW <= 0 {
		return nil, domain.NewValidationError("charger power_kw must be positive")
	}

	now := s.now()
	charger := &domain.Charger{
		ID:        uuid.New().String(),
		StationID: stationID,
		Name:      name,
		PowerKW:   input.PowerKW,
		CreatedAt: now,
		UpdatedAt: now,
	}

	seen := make(map[string]bool, len(input.ConnectorTypes))
	for _, t := range input.ConnectorTypes {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		charger.ConnectorTypes = append(charger.ConnectorTypes, domain.ConnectorType{
			ID:        uuid.New().String(),
			ChargerID: charger.ID,
			Type:      t,
		})
	}
	if len(charger.ConnectorTypes) == 0 {
		return nil, domain.NewValidationError("a charger needs at least one connector type")
	}
	return charger, nil
}

func validateStation(station *domain.ChargingStation) error {
	station.Name = strings.TrimSpace(station.Name)
	station.Address = strings.TrimSpace(station.Address)
	station.City = strings.TrimSpace(station.City)

	var missing []string
	if station.Name == "" {
		missing = append(missing, "name")
	}
	if station.Address == "" {
		missing = append(missing, "address")
	}
	if station.City == "" {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return domain.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	if station.Latitude < -90 || station.Latitude > 90 || station.Longitude < -180 || station.Longitude > 180 {
		return domain.NewValidationError("coordinates out of range")
	}
	return nil
}

var _ ports.StationService = (*Service)(nil)
