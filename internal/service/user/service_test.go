package user

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/mocks"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/internal/service/auth"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

type fixture struct {
	users    map[string]*domain.User
	vehicles map[string]*domain.Vehicle
	files    map[string]*domain.File

	refreshed []string
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := auth.HashPassword("old-password")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}

	f := &fixture{
		users: map[string]*domain.User{
			"user-1":  {ID: "user-1", Name: "Driver", Role: domain.UserRoleEVOwner, Password: hash},
			"owner-1": {ID: "owner-1", Name: "Owner", Role: domain.UserRoleStationOwner},
		},
		vehicles: map[string]*domain.Vehicle{
			"vehicle-1": {ID: "vehicle-1", OwnerID: "user-1", Make: "Nissan", Model: "Leaf"},
		},
		files: map[string]*domain.File{
			"file-1": {ID: "file-1", OwnerID: "user-1"},
			"file-2": {ID: "file-2", OwnerID: "owner-1"},
		},
	}

	userRepo := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			if u, ok := f.users[id]; ok {
				cp := *u
				return &cp, nil
			}
			return nil, nil
		},
		SaveFunc: func(ctx context.Context, user *domain.User) error {
			cp := *user
			f.users[user.ID] = &cp
			return nil
		},
	}
	vehicleRepo := &mocks.MockVehicleRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Vehicle, error) {
			if v, ok := f.vehicles[id]; ok {
				cp := *v
				return &cp, nil
			}
			return nil, nil
		},
		FindByOwnerFunc: func(ctx context.Context, ownerID string) ([]domain.Vehicle, error) {
			var out []domain.Vehicle
			for _, v := range f.vehicles {
				if v.OwnerID == ownerID {
					out = append(out, *v)
				}
			}
			return out, nil
		},
		SaveFunc: func(ctx context.Context, vehicle *domain.Vehicle) error {
			cp := *vehicle
			f.vehicles[vehicle.ID] = &cp
			return nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			delete(f.vehicles, id)
			return nil
		},
	}
	bookingRepo := &mocks.MockBookingRepository{
		RefreshVehicleProjectionFunc: func(ctx context.Context, vehicle *domain.Vehicle) error {
			f.refreshed = append(f.refreshed, vehicle.Label())
			return nil
		},
	}
	fileRepo := &mocks.MockFileRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.File, error) {
			return f.files[id], nil
		},
	}

	f.service = NewService(userRepo, vehicleRepo, bookingRepo, fileRepo, newTestLogger())
	return f
}

func TestGetProfile_NotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.GetProfile(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	name, phone, notify := "  New Name ", "+15550100", false

	user, err := f.service.UpdateProfile(context.Background(), "user-1", ports.ProfileUpdate{
		Name:          &name,
		Phone:         &phone,
		NotifyByEmail: &notify,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if user.Name != "New Name" || user.Phone != "+15550100" || user.NotifyByEmail {
		t.Errorf("unexpected profile %+v", user)
	}
	if f.users["user-1"].Name != "New Name" {
		t.Error("expected profile to be persisted")
	}
}

func TestUpdateProfile_EmptyName(t *testing.T) {
	f := newFixture(t)
	empty := "   "

	_, err := f.service.UpdateProfile(context.Background(), "user-1", ports.ProfileUpdate{Name: &empty})
	if domain.KindOf(err) != domain.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.ChangePassword(ctx, "user-1", "wrong", "new-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := f.service.ChangePassword(ctx, "user-1", "old-password", "short"); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := f.service.ChangePassword(ctx, "user-1", "old-password", "new-password"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !auth.CheckPassword(f.users["user-1"].Password, "new-password") {
		t.Error("expected stored hash to match the new password")
	}
}

func TestSetProfileImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.SetProfileImage(ctx, "user-1", "file-2"); !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound for another user's file, got %v", err)
	}
	if err := f.service.SetProfileImage(ctx, "user-1", "file-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f.users["user-1"].ProfileImageID != "file-1" {
		t.Error("expected profile image to be set")
	}
}

func TestAddVehicle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vehicle := &domain.Vehicle{Make: " Tesla ", Model: "Model 3", PlateNumber: "abc-123"}
	if err := f.service.AddVehicle(ctx, "user-1", vehicle); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if vehicle.ID == "" || vehicle.OwnerID != "user-1" {
		t.Errorf("expected id and owner to be set, got %+v", vehicle)
	}
	if vehicle.Make != "Tesla" || vehicle.PlateNumber != "ABC-123" {
		t.Errorf("expected normalized fields, got %+v", vehicle)
	}

	list, _ := f.service.ListVehicles(ctx, "user-1")
	if len(list) != 2 {
		t.Errorf("expected 2 vehicles, got %d", len(list))
	}
}

func TestAddVehicle_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.AddVehicle(ctx, "owner-1", &domain.Vehicle{Make: "A", Model: "B"}); domain.KindOf(err) != domain.KindForbidden {
		t.Errorf("expected forbidden for station owner, got %v", err)
	}

	err := f.service.AddVehicle(ctx, "user-1", &domain.Vehicle{})
	if err == nil || err.Error() != "missing required fields: make, model" {
		t.Errorf("expected missing fields error, got %v", err)
	}
}

func TestUpdateVehicle_RefreshesBookingLabels(t *testing.T) {
	f := newFixture(t)

	vehicle := &domain.Vehicle{ID: "vehicle-1", Make: "Nissan", Model: "Leaf e+", PlateNumber: "xyz9"}
	if err := f.service.UpdateVehicle(context.Background(), "user-1", vehicle); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(f.refreshed) != 1 || f.refreshed[0] != "Nissan Leaf e+ (XYZ9)" {
		t.Errorf("expected projection refresh with new label, got %v", f.refreshed)
	}
}

func TestVehicleOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.service.UpdateVehicle(ctx, "owner-1", &domain.Vehicle{ID: "vehicle-1", Make: "A", Model: "B"})
	if !errors.Is(err, domain.ErrVehicleNotFound) {
		t.Errorf("expected ErrVehicleNotFound, got %v", err)
	}
	if err := f.service.DeleteVehicle(ctx, "owner-1", "vehicle-1"); !errors.Is(err, domain.ErrVehicleNotFound) {
		t.Errorf("expected ErrVehicleNotFound, got %v", err)
	}
	if err := f.service.DeleteVehicle(ctx, "user-1", "vehicle-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := f.vehicles["vehicle-1"]; ok {
		t.Error("expected vehicle to be deleted")
	}
}

func TestListVehicles_Empty(t *testing.T) {
	f := newFixture(t)

	list, err := f.service.ListVehicles(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", list)
	}
}
