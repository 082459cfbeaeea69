package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

type Service struct {
	repo     ports.ReportRepository
	notifier ports.NotificationService
	log      *zap.Logger
	now      func() time.Time
}

func NewService(repo ports.ReportRepository, notifier ports.NotificationService, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit files a new report and alerts staff.
func (s *Service) Submit(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	report.Subject = strings.TrimSpace(report.Subject)
	report.Description = strings.TrimSpace(report.Description)

	var missing []string
	if report.Subject == "" {
		missing = append(missing, "subject")
	}
	if report.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}

	now := s.now()
	report.ID = uuid.New().String()
	report.Status = domain.ReportStatusOpen
	report.Resolution = ""
	report.ResolvedBy = ""
	report.ResolvedAt = nil
	report.CreatedAt = now
	report.UpdatedAt = now

	if err := s.repo.Save(ctx, report); err != nil {
		return nil, domain.NewInternalError("failed to save report", err)
	}

	s.log.Info("report submitted", zap.String("report_id", report.ID), zap.String("user_id", report.ReporterID))

	if err := s.notifier.NotifyStaff(ctx, domain.NotificationReportSubmitted, "New report", report.Subject); err != nil {
		s.log.Warn("failed to notify staff", zap.String("report_id", report.ID), zap.Error(err))
	}
	return report, nil
}

func (s *Service) ListMine(ctx context.Context, reporterID string) ([]domain.Report, error) {
	return s.find(ctx, "", reporterID)
}

func (s *Service) List(ctx context.Context, status domain.ReportStatus) ([]domain.Report, error) {
	switch status {
	case "", domain.ReportStatusOpen, domain.ReportStatusResolved:
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unknown report status %q", status))
	}
	return s.find(ctx, status, "")
}

// Resolve closes an open report and tells the reporter.
func (s *Service) Resolve(ctx context.Context, resolver ports.Actor, id, resolution string) (*domain.Report, error) {
	if !resolver.Role.IsStaff() {
		return nil, domain.ErrPermissionDenied
	}
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return nil, domain.NewValidationError("missing required fields: resolution")
	}

	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to load report", err)
	}
	if report == nil {
		return nil, domain.ErrReportNotFound
	}
	if report.Status == domain.ReportStatusResolved {
		return nil, domain.NewInvalidTransitionError("report is already resolved")
	}

	now := s.now()
	report.Status = domain.ReportStatusResolved
	report.Resolution = resolution
	report.ResolvedBy = resolver.UserID
	report.ResolvedAt = &now
	report.UpdatedAt = now

	if err := s.repo.Save(ctx, report); err != nil {
		return nil, domain.NewInternalError("failed to save report", err)
	}

	s.log.Info("report resolved", zap.String("report_id", report.ID), zap.String("resolver_id", resolver.UserID))

	title := "Your report was resolved"
	body := fmt.Sprintf("%s: %s", report.Subject, resolution)
	if err := s.notifier.Notify(ctx, []string{report.ReporterID}, domain.NotificationReportResolved, title, body); err != nil {
		s.log.Warn("failed to notify reporter", zap.String("report_id", report.ID), zap.Error(err))
	}
	return report, nil
}

func (s *Service) find(ctx context.Context, status domain.ReportStatus, reporterID string) ([]domain.Report, error) {
	reports, err := s.repo.FindAll(ctx, status, reporterID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list reports", err)
	}
	if reports == nil {
		reports = []domain.Report{}
	}
	return reports, nil
}

var _ ports.ReportService = (*Service)(nil)
