package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	reportsSheet    = "Reports"
)

// Service implements AdminService
type Service struct {
	userRepo    ports.UserRepository
	stationRepo ports.StationRepository
	bookingRepo ports.BookingRepository
	reportRepo  ports.ReportRepository
	log         *zap.Logger
}

// NewService creates a new admin service
func NewService(
	userRepo ports.UserRepository,
	stationRepo ports.StationRepository,
	bookingRepo ports.BookingRepository,
	reportRepo ports.ReportRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		userRepo:    userRepo,
		stationRepo: stationRepo,
		bookingRepo: bookingRepo,
		reportRepo:  reportRepo,
		log:         log,
	}
}

// GetDashboardStats returns dashboard statistics. A failing counter is logged
// and left at zero so the console still renders.
func (s *Service) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to count users", err)
	}
	stats.TotalUsers = total

	if stats.ApprovedStation, err = s.stationRepo.CountByStatus(ctx, domain.StationStatusApproved); err != nil {
		s.log.Warn("Failed to count approved stations", zap.Error(err))
	}
	if stats.PendingStations, err = s.stationRepo.CountByStatus(ctx, domain.StationStatusPending); err != nil {
		s.log.Warn("Failed to count pending stations", zap.Error(err))
	}
	if stats.OpenReports, err = s.reportRepo.CountByStatus(ctx, domain.ReportStatusOpen); err != nil {
		s.log.Warn("Failed to count open reports", zap.Error(err))
	}

	summary, err := s.bookingRepo.CountByStatus(ctx)
	if err != nil {
		s.log.Warn("Failed to count bookings", zap.Error(err))
	} else if summary != nil {
		stats.Bookings = *summary
	}

	return stats, nil
}

// PendingStations lists stations waiting for review
func (s *Service) PendingStations(ctx context.Context) ([]domain.ChargingStation, error) {
	stations, err := s.stationRepo.FindAll(ctx, domain.StationFilter{Status: domain.StationStatusPending})
	if err != nil {
		return nil, domain.NewInternalError("failed to list stations", err)
	}
	if stations == nil {
		stations = []domain.ChargingStation{}
	}
	return stations, nil
}

// ListUsers returns a page of users and the total matching the filter
func (s *Service) ListUsers(ctx context.Context, filter domain.UserFilter, limit, offset int) ([]domain.User, int64, error) {
	if filter.Role != "" {
		switch domain.UserRole(filter.Role) {
		case domain.UserRoleEVOwner, domain.UserRoleStationOwner, domain.UserRoleAdmin, domain.UserRoleSupportOfficer:
		default:
			return nil, 0, domain.NewValidationError(fmt.Sprintf("unknown role %q", filter.Role))
		}
	}
	if filter.Status != "" && !validStatus(domain.UserStatus(filter.Status)) {
		return nil, 0, domain.NewValidationError(fmt.Sprintf("unknown status %q", filter.Status))
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.userRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, domain.NewInternalError("failed to list users", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, total, nil
}

// UpdateUserStatus activates or suspends an account
func (s *Service) UpdateUserStatus(ctx context.Context, id string, status domain.UserStatus) error {
	if !validStatus(status) {
		return domain.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}

	if err := s.userRepo.UpdateStatus(ctx, id, status); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return err
		}
		return domain.NewInternalError("failed to update user status", err)
	}

	s.log.Info("User status updated", zap.String("user_id", id), zap.String("status", string(status)))
	return nil
}

// ExportReports renders the reports with the given status (all when empty)
// as an XLSX workbook.
func (s *Service) ExportReports(ctx context.Context, status domain.ReportStatus) ([]byte, error) {
	reports, err := s.reportRepo.FindAll(ctx, status, "")
	if err != nil {
		return nil, domain.NewInternalError("failed to list reports", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []interface{}{
		"ID", "Subject", "Description", "Status", "Reporter", "Station", "Booking",
		"Resolution", "Resolved By", "Created At", "Resolved At",
	}
	if err := f.SetSheetRow(reportsSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	}); err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(headers))
		f.SetCellStyle(reportsSheet, "A1", lastCol+"1", style)
	}

	for i, r := range reports {
		resolvedAt := ""
		if r.ResolvedAt != nil {
			resolvedAt = r.ResolvedAt.UTC().Format(time.RFC3339)
		}
		row := []interface{}{
			r.ID, r.Subject, r.Description, string(r.Status), r.ReporterID, r.StationID, r.BookingID,
			r.Resolution, r.ResolvedBy, r.CreatedAt.UTC().Format(time.RFC3339), resolvedAt,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(reportsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	f.SetColWidth(reportsSheet, "B", "C", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, domain.NewInternalError("failed to render workbook", err)
	}

	s.log.Info("Reports exported", zap.Int("rows", len(reports)), zap.String("status", string(status)))
	return buf.Bytes(), nil
}

func validStatus(status domain.UserStatus) bool {
	return status == domain.UserStatusActive || status == domain.UserStatusSuspended
}

var _ ports.AdminService = (*Service)(nil)
