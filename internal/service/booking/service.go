package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/cache"
	"github.com/chargehub/chargehub-api/internal/adapter/queue"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/observability/telemetry"
	"github.com/chargehub/chargehub-api/internal/ports"
)

// Service implements BookingService
type Service struct {
	repo     ports.BookingRepository
	users    ports.UserRepository
	vehicles ports.VehicleRepository
	stations ports.StationRepository
	chats    ports.ChatService
	notifier ports.NotificationService
	cache    ports.Cache
	mq       queue.MessageQueue
	config   *domain.BookingConfig
	log      *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewService creates a new booking service. chats, notifier, cache and mq may
// be nil; the corresponding side effects are then skipped.
func NewService(
	repo ports.BookingRepository,
	users ports.UserRepository,
	vehicles ports.VehicleRepository,
	stations ports.StationRepository,
	chats ports.ChatService,
	notifier ports.NotificationService,
	slotCache ports.Cache,
	mq queue.MessageQueue,
	config *domain.BookingConfig,
	log *zap.Logger,
) *Service {
	if config == nil {
		config = domain.DefaultBookingConfig()
	}

	return &Service{
		repo:     repo,
		users:    users,
		vehicles: vehicles,
		stations: stations,
		chats:    chats,
		notifier: notifier,
		cache:    slotCache,
		mq:       mq,
		config:   config,
		log:      log,
		tracer:   otel.Tracer("github.com/chargehub/chargehub-api/internal/service/booking"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create books NoOfSlots contiguous slots on a charger connector
func (s *Service) Create(ctx context.Context, req *ports.BookingRequest) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Create")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	window, err := ComputeWindow(req.BookingDateTime, s.config.SlotDuration(), req.NoOfSlots)
	if err != nil {
		return nil, err
	}
	if window.Start.Before(s.now()) {
		return nil, domain.NewValidationError("booking_date_time must be in the future")
	}

	owner, err := s.users.FindByID(ctx, req.EVUserID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if owner == nil {
		return nil, domain.ErrUserNotFound
	}

	vehicle, err := s.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load vehicle", err)
	}
	if vehicle == nil || vehicle.OwnerID != owner.ID {
		return nil, domain.ErrVehicleNotFound
	}

	charger, err := s.stations.FindCharger(ctx, req.ChargerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load charger", err)
	}
	if charger == nil {
		return nil, domain.ErrChargerNotFound
	}
	connector := charger.Connector(req.PlugType)
	if connector == nil {
		return nil, domain.ErrConnectorNotFound
	}

	station, err := s.stations.FindByID(ctx, charger.StationID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load station", err)
	}
	if station == nil {
		return nil, domain.ErrStationNotFound
	}
	if station.Status != domain.StationStatusApproved {
		return nil, domain.ErrStationNotApproved
	}

	now := s.now()
	booking := &domain.Booking{
		ID:              uuid.New().String(),
		EVUserID:        owner.ID,
		VehicleID:       vehicle.ID,
		StationID:       station.ID,
		ChargerID:       charger.ID,
		ConnectorTypeID: connector.ID,
		BookingDate:     window.Day,
		StartTime:       window.Start,
		EndTime:         window.End,
		NoOfSlots:       req.NoOfSlots,
		Status:          domain.BookingStatusUpcoming,
		StationName:     station.Name,
		ChargerName:     charger.Name,
		PlugType:        connector.Type,
		VehicleLabel:    vehicle.Label(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	span.SetAttributes(
		attribute.String("booking.id", booking.ID),
		attribute.String("booking.charger_id", booking.ChargerID),
		attribute.Int("booking.no_of_slots", booking.NoOfSlots),
	)

	start := time.Now()
	err = s.repo.Create(ctx, booking, s.config.PreventOverlap)
	telemetry.DatabaseLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			telemetry.BookingConflictsTotal.Inc()
			span.SetStatus(codes.Error, "slot conflict")
			return nil, err
		}
		if domain.KindOf(err) != domain.KindInternal {
			return nil, err
		}
		span.RecordError(err)
		return nil, domain.NewInternalError("failed to save booking", err)
	}

	telemetry.BookingsCreatedTotal.Inc()
	s.invalidateSlots(ctx, booking)

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("ev_user_id", booking.EVUserID),
		zap.String("charger_id", booking.ChargerID),
		zap.Time("start_time", booking.StartTime),
		zap.Int("no_of_slots", booking.NoOfSlots),
	)

	s.afterCreate(ctx, booking, station)

	return booking, nil
}

// validateRequest validates a booking request
func (s *Service) validateRequest(req *ports.BookingRequest) error {
	if req == nil {
		return domain.NewValidationError("request is required")
	}

	var missing []string
	if req.EVUserID == "" {
		missing = append(missing, "ev_user_id")
	}
	if req.VehicleID == "" {
		missing = append(missing, "vehicle_id")
	}
	if req.BookingDateTime == "" {
		missing = append(missing, "booking_date_time")
	}
	if req.ChargerID == "" {
		missing = append(missing, "charger_id")
	}
	if req.PlugType == "" {
		missing = append(missing, "plug_type")
	}
	if len(missing) > 0 {
		return domain.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}

	if req.NoOfSlots <= 0 {
		return domain.ErrInvalidSlotCount
	}
	if limit := s.config.SlotLimit(); req.NoOfSlots > limit {
		return domain.Wrap(domain.ErrTooManySlots, fmt.Errorf("maximum is %d", limit))
	}

	return nil
}

// Get returns a booking by ID
func (s *Service) Get(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to load booking", err)
	}
	if booking == nil {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

// GetBookedSlots expands every non-cancelled booking of the given day into its
// slots, optionally restricted to one charger.
func (s *Service) GetBookedSlots(ctx context.Context, date string, chargerID string) ([]domain.Slot, error) {
	ctx, span := s.tracer.Start(ctx, "booking.GetBookedSlots")
	defer span.End()

	day, err := ParseDay(date)
	if err != nil {
		return nil, domain.Wrap(domain.NewValidationError("invalid date"), err)
	}

	// The generation is read before the bookings so that a fill racing with
	// a write is stored under a key no later reader looks up.
	generation, cacheable := s.slotsGeneration(ctx, day)
	key := slotsCacheKey(day, generation, chargerID)
	if cacheable {
		if slots, ok := s.cachedSlots(ctx, key); ok {
			telemetry.BookedSlotsCacheTotal.WithLabelValues("hit").Inc()
			return slots, nil
		}
		telemetry.BookedSlotsCacheTotal.WithLabelValues("miss").Inc()
	}

	bookings, err := s.repo.FindByDay(ctx, day)
	if err != nil {
		return nil, domain.NewInternalError("failed to load bookings", err)
	}

	slots := ExpandSlots(occupying(bookings, chargerID), s.config.SlotDuration())
	if cacheable {
		s.storeSlots(ctx, key, slots)
	}

	return slots, nil
}

// GetUserBookings lists an EV owner's bookings in one status
func (s *Service) GetUserBookings(ctx context.Context, ownerID string, status domain.BookingStatus) ([]domain.Booking, error) {
	if ownerID == "" {
		return nil, domain.NewValidationError("ev_user_id is required")
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("invalid booking status")
	}

	bookings, err := s.repo.FindByOwner(ctx, ownerID, status)
	if err != nil {
		return nil, domain.NewInternalError("failed to load bookings", err)
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, nil
}

// GetStationBookings lists a station's bookings for a day. Only the station
// owner and staff may see them.
func (s *Service) GetStationBookings(ctx context.Context, actor ports.Actor, stationID string, day time.Time) ([]domain.Booking, error) {
	station, err := s.stations.FindByID(ctx, stationID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load station", err)
	}
	if station == nil {
		return nil, domain.ErrStationNotFound
	}
	if !actor.Role.IsStaff() && station.OwnerID != actor.UserID {
		return nil, domain.ErrPermissionDenied
	}

	bookings, err := s.repo.FindByStation(ctx, stationID, DayOf(day))
	if err != nil {
		return nil, domain.NewInternalError("failed to load bookings", err)
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, nil
}

// CheckOperator fails unless actor is staff or owns the station the booking
// belongs to.
func (s *Service) CheckOperator(ctx context.Context, actor ports.Actor, bookingID string) error {
	if actor.Role.IsStaff() {
		return nil
	}
	booking, err := s.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	station, err := s.stations.FindByID(ctx, booking.StationID)
	if err != nil {
		return domain.NewInternalError("failed to load station", err)
	}
	if station == nil || station.OwnerID != actor.UserID {
		return domain.ErrPermissionDenied
	}
	return nil
}

// Cancel moves an upcoming booking to cancelled. The EV owner, the station
// owner and staff may cancel.
func (s *Service) Cancel(ctx context.Context, id string, actor ports.Actor) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Cancel")
	defer span.End()

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	station, err := s.stations.FindByID(ctx, booking.StationID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load station", err)
	}
	if !canManage(actor, booking, station) {
		return nil, domain.ErrPermissionDenied
	}

	if booking.Status.IsTerminal() {
		return nil, transitionError(booking, domain.BookingStatusCancelled)
	}

	now := s.now()
	booking.Status = domain.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.UpdatedAt = now

	if err := s.save(ctx, booking, domain.BookingGuard{Status: domain.BookingStatusUpcoming}); err != nil {
		return nil, err
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", booking.ID),
		zap.String("cancelled_by", actor.UserID),
	)

	recipients := []string{booking.EVUserID}
	if station != nil {
		recipients = append(recipients, station.OwnerID)
	}
	s.notify(ctx, recipients, domain.NotificationBookingCancelled, "Booking cancelled",
		fmt.Sprintf("The booking at %s on %s was cancelled.", booking.StationName, booking.StartTime.Format(time.RFC1123)))
	s.publish(booking, "booking.cancelled")

	return booking, nil
}

// Complete moves an upcoming booking to completed, optionally recording its cost
func (s *Service) Complete(ctx context.Context, id string, cost *float64) (*domain.Booking, error) {
	if cost != nil && *cost < 0 {
		return nil, domain.NewValidationError("cost must not be negative")
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, transitionError(booking, domain.BookingStatusCompleted)
	}

	booking.Status = domain.BookingStatusCompleted
	booking.Cost = cost
	booking.UpdatedAt = s.now()

	if err := s.save(ctx, booking, domain.BookingGuard{Status: domain.BookingStatusUpcoming}); err != nil {
		return nil, err
	}

	s.log.Info("Booking completed", zap.String("booking_id", booking.ID))
	s.notify(ctx, []string{booking.EVUserID}, domain.NotificationBookingUpdated, "Charging session completed",
		fmt.Sprintf("Your booking at %s is complete.", booking.StationName))
	s.publish(booking, "booking.completed")

	return booking, nil
}

// MarkNoShow moves an upcoming booking whose window has passed without an
// arrival to no_show.
func (s *Service) MarkNoShow(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.markNoShow(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *Service) markNoShow(ctx context.Context, booking *domain.Booking) error {
	if booking.Status.IsTerminal() {
		return transitionError(booking, domain.BookingStatusNoShow)
	}
	if booking.ArrivalTime != nil {
		return domain.Wrap(domain.ErrInvalidTransition, errors.New("arrival already recorded"))
	}
	now := s.now()
	if !now.After(booking.EndTime) {
		return domain.ErrBookingNotOverdue
	}

	booking.Status = domain.BookingStatusNoShow
	booking.UpdatedAt = now

	guard := domain.BookingGuard{Status: domain.BookingStatusUpcoming, NoArrival: true}
	if err := s.save(ctx, booking, guard); err != nil {
		return err
	}

	s.log.Info("Booking marked as no-show", zap.String("booking_id", booking.ID))
	s.notify(ctx, []string{booking.EVUserID}, domain.NotificationBookingUpdated, "Booking missed",
		fmt.Sprintf("You did not arrive for your booking at %s.", booking.StationName))
	s.publish(booking, "booking.no_show")
	return nil
}

// RecordArrival stamps the arrival time of an upcoming booking. Repeated calls
// keep the first arrival.
func (s *Service) RecordArrival(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, domain.Wrap(domain.ErrInvalidTransition,
			fmt.Errorf("cannot record arrival for %s booking", booking.Status))
	}
	if booking.ArrivalTime != nil {
		return booking, nil
	}

	now := s.now()
	booking.ArrivalTime = &now
	booking.UpdatedAt = now

	guard := domain.BookingGuard{Status: domain.BookingStatusUpcoming, NoArrival: true}
	if err := s.save(ctx, booking, guard); err != nil {
		if !errors.Is(err, domain.ErrBookingChanged) {
			return nil, err
		}
		// A concurrent arrival won; report the stored one.
		current, getErr := s.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status.IsTerminal() || current.ArrivalTime == nil {
			return nil, err
		}
		return current, nil
	}

	s.log.Info("Arrival recorded", zap.String("booking_id", booking.ID), zap.Time("arrival_time", now))
	s.publish(booking, "booking.arrived")

	return booking, nil
}

// AttachCost sets the cost of a completed booking
func (s *Service) AttachCost(ctx context.Context, id string, cost float64) (*domain.Booking, error) {
	if cost < 0 {
		return nil, domain.NewValidationError("cost must not be negative")
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusCompleted {
		return nil, domain.Wrap(domain.ErrInvalidTransition,
			fmt.Errorf("cost can only be attached to completed bookings, status is %s", booking.Status))
	}

	booking.Cost = &cost
	booking.UpdatedAt = s.now()

	if err := s.save(ctx, booking, domain.BookingGuard{Status: domain.BookingStatusCompleted}); err != nil {
		return nil, err
	}

	s.log.Info("Booking cost attached", zap.String("booking_id", booking.ID), zap.Float64("cost", cost))
	return booking, nil
}

// ProcessNoShows marks every overdue upcoming booking without an arrival as
// no_show and returns how many were changed.
func (s *Service) ProcessNoShows(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "booking.ProcessNoShows")
	defer span.End()

	candidates, err := s.repo.FindNoShowCandidates(ctx, s.now())
	if err != nil {
		return 0, domain.NewInternalError("failed to load overdue bookings", err)
	}

	processed := 0
	for i := range candidates {
		if err := s.markNoShow(ctx, &candidates[i]); err != nil {
			s.log.Warn("Failed to mark booking as no-show",
				zap.String("booking_id", candidates[i].ID),
				zap.Error(err),
			)
			continue
		}
		processed++
	}

	if processed > 0 {
		s.log.Info("Processed no-show bookings", zap.Int("count", processed))
	}
	return processed, nil
}

// save persists booking only if the stored row still satisfies guard.
func (s *Service) save(ctx context.Context, booking *domain.Booking, guard domain.BookingGuard) error {
	if err := s.repo.Update(ctx, booking, guard); err != nil {
		if errors.Is(err, domain.ErrBookingChanged) {
			telemetry.BookingConflictsTotal.Inc()
			return err
		}
		return domain.NewInternalError("failed to update booking", err)
	}
	telemetry.BookingTransitionsTotal.WithLabelValues(string(booking.Status)).Inc()
	s.invalidateSlots(ctx, booking)
	return nil
}

func (s *Service) afterCreate(ctx context.Context, booking *domain.Booking, station *domain.ChargingStation) {
	if s.chats != nil && station.OwnerID != "" && station.OwnerID != booking.EVUserID {
		if _, err := s.chats.Open(ctx, booking.EVUserID, station.OwnerID, booking.ID); err != nil {
			s.log.Warn("Failed to open booking chat", zap.String("booking_id", booking.ID), zap.Error(err))
		}
	}

	when := booking.StartTime.Format(time.RFC1123)
	s.notify(ctx, []string{booking.EVUserID}, domain.NotificationBookingCreated, "Booking confirmed",
		fmt.Sprintf("%s at %s is booked for %s.", booking.ChargerName, booking.StationName, when))
	if station.OwnerID != booking.EVUserID {
		s.notify(ctx, []string{station.OwnerID}, domain.NotificationBookingCreated, "New booking",
			fmt.Sprintf("%s was booked for %s (%d slots).", booking.ChargerName, when, booking.NoOfSlots))
	}
	s.publish(booking, "booking.created")
}

func (s *Service) notify(ctx context.Context, userIDs []string, kind domain.NotificationKind, title, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userIDs, kind, title, body); err != nil {
		s.log.Warn("Failed to send booking notification", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (s *Service) publish(booking *domain.Booking, eventType string) {
	evt := domain.Event{Type: eventType, UserID: booking.EVUserID, Payload: booking, SentAt: s.now()}
	if err := queue.PublishEvent(s.mq, domain.SubjectBookingEvents, evt); err != nil {
		s.log.Warn("Failed to publish booking event", zap.String("type", eventType), zap.Error(err))
	}
}

// slotsGeneration returns the current cache generation of a day. ok is false
// when the slot cache is disabled or unreachable.
func (s *Service) slotsGeneration(ctx context.Context, day time.Time) (generation string, ok bool) {
	if s.cache == nil || s.config.SlotsCacheTTL <= 0 {
		return "", false
	}
	generation, err := s.cache.Get(ctx, slotsGenerationKey(day))
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("Slot cache unavailable", zap.Error(err))
		return "", false
	}
	return generation, true
}

func (s *Service) cachedSlots(ctx context.Context, key string) ([]domain.Slot, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return nil, false
	}
	var slots []domain.Slot
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		s.log.Warn("Discarding unreadable slot cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return slots, true
}

func (s *Service) storeSlots(ctx context.Context, key string, slots []domain.Slot) {
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.config.SlotsCacheTTL); err != nil {
		s.log.Warn("Failed to cache booked slots", zap.String("key", key), zap.Error(err))
	}
}

// invalidateSlots starts a new cache generation for the booking's day. Entries
// of older generations are never read again and expire on their own.
func (s *Service) invalidateSlots(ctx context.Context, booking *domain.Booking) {
	if s.cache == nil {
		return
	}
	key := slotsGenerationKey(booking.BookingDate)
	ttl := slotsGenerationTTL
	if ttl < 2*s.config.SlotsCacheTTL {
		ttl = 2 * s.config.SlotsCacheTTL
	}
	if err := s.cache.Set(ctx, key, uuid.NewString(), ttl); err != nil {
		s.log.Warn("Failed to invalidate booked slots cache", zap.String("key", key), zap.Error(err))
	}
}

const slotsGenerationTTL = 24 * time.Hour

func slotsGenerationKey(day time.Time) string {
	return "booking:slotgen:" + day.Format("2006-01-02")
}

func slotsCacheKey(day time.Time, generation, chargerID string) string {
	if chargerID == "" {
		chargerID = "all"
	}
	bucket := day.Format("2006-01-02")
	if generation != "" {
		bucket += "." + generation
	}
	return fmt.Sprintf("booking:slots:%s:%s", bucket, chargerID)
}

func canManage(actor ports.Actor, booking *domain.Booking, station *domain.ChargingStation) bool {
	if actor.Role.IsStaff() || actor.UserID == booking.EVUserID {
		return true
	}
	return station != nil && station.OwnerID == actor.UserID
}

func transitionError(booking *domain.Booking, target domain.BookingStatus) error {
	return domain.Wrap(domain.ErrInvalidTransition,
		fmt.Errorf("cannot move booking from %s to %s", booking.Status, target))
}
