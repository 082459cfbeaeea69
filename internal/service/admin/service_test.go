package admin

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newTestService(users *mocks.MockUserRepository, stations *mocks.MockStationRepository, bookings *mocks.MockBookingRepository, reports *mocks.MockReportRepository) *Service {
	if users == nil {
		users = &mocks.MockUserRepository{}
	}
	if stations == nil {
		stations = &mocks.MockStationRepository{}
	}
	if bookings == nil {
		bookings = &mocks.MockBookingRepository{}
	}
	if reports == nil {
		reports = &mocks.MockReportRepository{}
	}
	return NewService(users, stations, bookings, reports, newTestLogger())
}

func TestGetDashboardStats(t *testing.T) {
	users := &mocks.MockUserRepository{
		CountFunc: func(ctx context.Context) (int64, error) { return 42, nil },
	}
	stations := &mocks.MockStationRepository{
		CountByStatusFunc: func(ctx context.Context, status domain.StationStatus) (int64, error) {
			if status == domain.StationStatusApproved {
				return 7, nil
			}
			return 0, errors.New("timeout")
		},
	}
	bookings := &mocks.MockBookingRepository{
		CountByStatusFunc: func(ctx context.Context) (*domain.BookingSummary, error) {
			return &domain.BookingSummary{Upcoming: 3, Completed: 10}, nil
		},
	}
	reports := &mocks.MockReportRepository{
		CountByStatusFunc: func(ctx context.Context, status domain.ReportStatus) (int64, error) { return 2, nil },
	}
	service := newTestService(users, stations, bookings, reports)

	stats, err := service.GetDashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), stats.TotalUsers)
	assert.Equal(t, int64(7), stats.ApprovedStation)
	assert.Equal(t, int64(0), stats.PendingStations, "a failing counter stays at zero")
	assert.Equal(t, int64(2), stats.OpenReports)
	assert.Equal(t, int64(3), stats.Bookings.Upcoming)
	assert.Equal(t, int64(10), stats.Bookings.Completed)
}

func TestGetDashboardStats_UserCountFails(t *testing.T) {
	users := &mocks.MockUserRepository{
		CountFunc: func(ctx context.Context) (int64, error) { return 0, errors.New("db down") },
	}
	service := newTestService(users, nil, nil, nil)

	_, err := service.GetDashboardStats(context.Background())
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestListUsers(t *testing.T) {
	var gotLimit int
	users := &mocks.MockUserRepository{
		ListFunc: func(ctx context.Context, filter domain.UserFilter, limit, offset int) ([]domain.User, int64, error) {
			gotLimit = limit
			return nil, 0, nil
		},
	}
	service := newTestService(users, nil, nil, nil)
	ctx := context.Background()

	list, total, err := service.ListUsers(ctx, domain.UserFilter{Role: "station_owner"}, 1000, -5)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Zero(t, total)
	assert.Equal(t, maxPageSize, gotLimit)

	_, _, err = service.ListUsers(ctx, domain.UserFilter{Role: "root"}, 10, 0)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, _, err = service.ListUsers(ctx, domain.UserFilter{Status: "deleted"}, 10, 0)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUpdateUserStatus(t *testing.T) {
	users := &mocks.MockUserRepository{
		UpdateStatusFunc: func(ctx context.Context, id string, status domain.UserStatus) error {
			if id == "missing" {
				return domain.ErrUserNotFound
			}
			return nil
		},
	}
	service := newTestService(users, nil, nil, nil)
	ctx := context.Background()

	assert.NoError(t, service.UpdateUserStatus(ctx, "u-1", domain.UserStatusSuspended))
	assert.ErrorIs(t, service.UpdateUserStatus(ctx, "missing", domain.UserStatusActive), domain.ErrUserNotFound)
	assert.Equal(t, domain.KindValidation, domain.KindOf(service.UpdateUserStatus(ctx, "u-1", "banned")))
}

func TestExportReports(t *testing.T) {
	resolvedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	reports := &mocks.MockReportRepository{
		FindAllFunc: func(ctx context.Context, status domain.ReportStatus, reporterID string) ([]domain.Report, error) {
			assert.Equal(t, domain.ReportStatusResolved, status)
			return []domain.Report{{
				ID:         "r-1",
				ReporterID: "user-1",
				Subject:    "Broken plug",
				Status:     domain.ReportStatusResolved,
				Resolution: "Replaced",
				ResolvedAt: &resolvedAt,
				CreatedAt:  resolvedAt.Add(-time.Hour),
			}}, nil
		},
	}
	service := newTestService(nil, nil, nil, reports)

	data, err := service.ExportReports(context.Background(), domain.ReportStatusResolved)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "r-1", rows[1][0])
	assert.Equal(t, "Broken plug", rows[1][1])
	assert.Equal(t, "2026-03-02T09:00:00Z", rows[1][10])
}
