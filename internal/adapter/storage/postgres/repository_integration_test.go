//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/pkg/config"
)

var (
	setupOnce sync.Once
	testDB    *gorm.DB
	setupErr  error
)

// openTestDB uses DATABASE_URL when set (CI) and a throwaway container otherwise.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	setupOnce.Do(func() {
		ctx := context.Background()
		log, _ := zap.NewDevelopment()

		url := os.Getenv("DATABASE_URL")
		if url == "" {
			pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
				tcpostgres.WithDatabase("chargehub_test"),
				tcpostgres.WithUsername("chargehub"),
				tcpostgres.WithPassword("chargehub_test"),
				tcpostgres.BasicWaitStrategies(),
			)
			if err != nil {
				setupErr = err
				return
			}
			url, setupErr = pg.ConnectionString(ctx, "sslmode=disable")
			if setupErr != nil {
				return
			}
		}

		testDB, setupErr = NewConnection(config.DatabaseConfig{
			URL:             url,
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Minute,
		}, log)
		if setupErr != nil {
			return
		}
		setupErr = RunMigrations(testDB, true)
	})

	if setupErr != nil {
		t.Skipf("Database not available: %v", setupErr)
	}
	return testDB
}

type seed struct {
	owner   domain.User
	driver  domain.User
	vehicle domain.Vehicle
	station domain.ChargingStation
}

func seedStation(t *testing.T, db *gorm.DB) seed {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	s := seed{
		owner:  domain.User{ID: uuid.NewString(), Name: "Owner", Email: uuid.NewString() + "@example.com", Role: domain.UserRoleStationOwner, Status: domain.UserStatusActive},
		driver: domain.User{ID: uuid.NewString(), Name: "Driver", Email: uuid.NewString() + "@example.com", Role: domain.UserRoleEVOwner, Status: domain.UserStatusActive},
	}
	users := NewUserRepository(db, log)
	for _, u := range []*domain.User{&s.owner, &s.driver} {
		if err := users.Save(ctx, u); err != nil {
			t.Fatalf("Failed to save user: %v", err)
		}
	}

	s.vehicle = domain.Vehicle{ID: uuid.NewString(), OwnerID: s.driver.ID, Make: "Kia", Model: "EV6", PlateNumber: "WP-1234"}
	if err := NewVehicleRepository(db, log).Save(ctx, &s.vehicle); err != nil {
		t.Fatalf("Failed to save vehicle: %v", err)
	}

	chargerID := uuid.NewString()
	s.station = domain.ChargingStation{
		ID:      uuid.NewString(),
		OwnerID: s.owner.ID,
		Name:    "Lakeside",
		City:    "Kandy",
		Status:  domain.StationStatusApproved,
		Chargers: []domain.Charger{{
			ID:      chargerID,
			Name:    "Bay A",
			PowerKW: 50,
			ConnectorTypes: []domain.ConnectorType{
				{ID: uuid.NewString(), Type: "CCS"},
				{ID: uuid.NewString(), Type: "Type 2"},
			},
		}},
	}
	if err := NewStationRepository(db, log).Save(ctx, &s.station); err != nil {
		t.Fatalf("Failed to save station: %v", err)
	}
	return s
}

func newBooking(s seed, start time.Time, slots int) *domain.Booking {
	charger := s.station.Chargers[0]
	return &domain.Booking{
		ID:              uuid.NewString(),
		EVUserID:        s.driver.ID,
		VehicleID:       s.vehicle.ID,
		StationID:       s.station.ID,
		ChargerID:       charger.ID,
		ConnectorTypeID: charger.ConnectorTypes[0].ID,
		BookingDate:     time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:       start,
		EndTime:         start.Add(time.Duration(slots*30) * time.Minute),
		NoOfSlots:       slots,
		Status:          domain.BookingStatusUpcoming,
		StationName:     s.station.Name,
		ChargerName:     charger.Name,
		PlugType:        charger.ConnectorTypes[0].Type,
		VehicleLabel:    s.vehicle.Label(),
	}
}

func TestStationRepository_LoadsChargers(t *testing.T) {
	db := openTestDB(t)
	s := seedStation(t, db)
	repo := NewStationRepository(db, zap.NewNop())

	station, err := repo.FindByID(context.Background(), s.station.ID)
	if err != nil {
		t.Fatalf("Failed to find station: %v", err)
	}
	if station == nil || len(station.Chargers) != 1 || len(station.Chargers[0].ConnectorTypes) != 2 {
		t.Fatalf("Expected station with one charger and two connectors, got %+v", station)
	}

	charger, err := repo.FindCharger(context.Background(), s.station.Chargers[0].ID)
	if err != nil || charger == nil {
		t.Fatalf("Failed to find charger: %v", err)
	}
	if charger.Connector("Type 2") == nil {
		t.Error("Expected Type 2 connector")
	}
}

func TestBookingRepository_ExclusiveCreate(t *testing.T) {
	db := openTestDB(t)
	s := seedStation(t, db)
	repo := NewBookingRepository(db, zap.NewNop())
	ctx := context.Background()

	start := time.Date(2030, 1, 15, 9, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, newBooking(s, start, 3), true); err != nil {
		t.Fatalf("Failed to create booking: %v", err)
	}

	t.Run("Overlap", func(t *testing.T) {
		err := repo.Create(ctx, newBooking(s, start.Add(time.Hour), 1), true)
		if !errors.Is(err, domain.ErrSlotConflict) {
			t.Errorf("Expected ErrSlotConflict, got %v", err)
		}
	})

	t.Run("Adjacent", func(t *testing.T) {
		if err := repo.Create(ctx, newBooking(s, start.Add(90*time.Minute), 1), true); err != nil {
			t.Errorf("Expected adjacent booking to succeed, got %v", err)
		}
	})

	t.Run("SameStartCaughtByIndex", func(t *testing.T) {
		err := repo.Create(ctx, newBooking(s, start, 1), false)
		if !errors.Is(err, domain.ErrSlotConflict) {
			t.Errorf("Expected unique index violation to map to ErrSlotConflict, got %v", err)
		}
	})

	t.Run("Concurrent", func(t *testing.T) {
		concurrentStart := start.Add(6 * time.Hour)
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < 6; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := repo.Create(ctx, newBooking(s, concurrentStart, 2), true); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		if succeeded != 1 {
			t.Errorf("Expected exactly one concurrent booking to succeed, got %d", succeeded)
		}
	})
}

func TestBookingRepository_QueriesAndProjection(t *testing.T) {
	db := openTestDB(t)
	s := seedStation(t, db)
	repo := NewBookingRepository(db, zap.NewNop())
	ctx := context.Background()

	start := time.Date(2030, 2, 1, 9, 0, 0, 0, time.UTC)
	b := newBooking(s, start, 2)
	if err := repo.Create(ctx, b, true); err != nil {
		t.Fatalf("Failed to create booking: %v", err)
	}

	day, err := repo.FindByDay(ctx, b.BookingDate)
	if err != nil {
		t.Fatalf("FindByDay failed: %v", err)
	}
	found := false
	for _, d := range day {
		found = found || d.ID == b.ID
	}
	if !found {
		t.Error("Expected booking in FindByDay result")
	}

	upcoming, err := repo.FindByOwner(ctx, s.driver.ID, domain.BookingStatusUpcoming)
	if err != nil || len(upcoming) != 1 {
		t.Fatalf("Expected one upcoming booking, got %d (%v)", len(upcoming), err)
	}

	candidates, err := repo.FindNoShowCandidates(ctx, start.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("FindNoShowCandidates failed: %v", err)
	}
	found = false
	for _, c := range candidates {
		found = found || c.ID == b.ID
	}
	if !found {
		t.Error("Expected overdue booking to be a no-show candidate")
	}

	s.station.Name = "Lakeside North"
	if err := repo.RefreshStationProjection(ctx, &s.station); err != nil {
		t.Fatalf("RefreshStationProjection failed: %v", err)
	}
	s.vehicle.PlateNumber = "WP-9999"
	if err := repo.RefreshVehicleProjection(ctx, &s.vehicle); err != nil {
		t.Fatalf("RefreshVehicleProjection failed: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, b.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if reloaded.StationName != "Lakeside North" {
		t.Errorf("Expected refreshed station name, got %q", reloaded.StationName)
	}
	if reloaded.VehicleLabel != "Kia EV6 (WP-9999)" {
		t.Errorf("Expected refreshed vehicle label, got %q", reloaded.VehicleLabel)
	}

	reloaded.Status = domain.BookingStatusCancelled
	if err := repo.Update(ctx, reloaded, domain.BookingGuard{Status: domain.BookingStatusUpcoming}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	summary, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if summary.Cancelled < 1 {
		t.Errorf("Expected at least one cancelled booking, got %+v", summary)
	}
}

func TestBookingRepository_ConditionalUpdate(t *testing.T) {
	db := openTestDB(t)
	s := seedStation(t, db)
	repo := NewBookingRepository(db, zap.NewNop())
	ctx := context.Background()

	b := newBooking(s, time.Now().UTC().Add(72*time.Hour).Truncate(time.Hour), 1)
	if err := repo.Create(ctx, b, true); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	upcoming := domain.BookingGuard{Status: domain.BookingStatusUpcoming}
	cancelled := *b
	cancelled.Status = domain.BookingStatusCancelled
	completed := *b
	completed.Status = domain.BookingStatusCompleted

	if err := repo.Update(ctx, &cancelled, upcoming); err != nil {
		t.Fatalf("First transition failed: %v", err)
	}
	err := repo.Update(ctx, &completed, upcoming)
	if !errors.Is(err, domain.ErrBookingChanged) {
		t.Fatalf("Expected ErrBookingChanged for the second transition, got %v", err)
	}
	stored, _ := repo.FindByID(ctx, b.ID)
	if stored.Status != domain.BookingStatusCancelled {
		t.Errorf("Expected booking to stay cancelled, got %s", stored.Status)
	}

	arrivedBooking := newBooking(s, time.Now().UTC().Add(96*time.Hour).Truncate(time.Hour), 1)
	if err := repo.Create(ctx, arrivedBooking, true); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	arrival := time.Now().UTC()
	withArrival := *arrivedBooking
	withArrival.ArrivalTime = &arrival
	if err := repo.Update(ctx, &withArrival, domain.BookingGuard{Status: domain.BookingStatusUpcoming, NoArrival: true}); err != nil {
		t.Fatalf("Arrival update failed: %v", err)
	}
	noShow := *arrivedBooking
	noShow.Status = domain.BookingStatusNoShow
	err = repo.Update(ctx, &noShow, domain.BookingGuard{Status: domain.BookingStatusUpcoming, NoArrival: true})
	if !errors.Is(err, domain.ErrBookingChanged) {
		t.Errorf("Expected no-show to be refused after arrival, got %v", err)
	}
}

func TestChatRepository_FindOrCreateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	s := seedStation(t, db)
	repo := NewChatRepository(db, zap.NewNop())
	ctx := context.Background()

	first, err := repo.FindOrCreate(ctx, &domain.Chat{ID: uuid.NewString(), ParticipantA: s.driver.ID, ParticipantB: s.owner.ID})
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	second, err := repo.FindOrCreate(ctx, &domain.Chat{ID: uuid.NewString(), ParticipantA: s.owner.ID, ParticipantB: s.driver.ID})
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Expected the same chat for the same pair, got %s and %s", first.ID, second.ID)
	}

	msg := &domain.Message{ID: uuid.NewString(), ChatID: first.ID, SenderID: s.driver.ID, Body: "On my way", CreatedAt: time.Now().UTC()}
	if err := repo.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if err := repo.MarkRead(ctx, first.ID, s.owner.ID, time.Now().UTC()); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	messages, err := repo.FindMessages(ctx, first.ID, 10, 0)
	if err != nil || len(messages) != 1 || messages[0].ReadAt == nil {
		t.Errorf("Expected one read message, got %+v (%v)", messages, err)
	}
}
