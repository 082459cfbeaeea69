package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/queue"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/observability/telemetry"
	"github.com/chargehub/chargehub-api/internal/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Mailer mirrors notifications by email (see email.Service)
type Mailer interface {
	SendNotification(ctx context.Context, user *domain.User, title, body string) error
}

// Service stores in-app notifications, publishes them for websocket delivery
// and emails users who opted in.
type Service struct {
	repo   ports.NotificationRepository
	users  ports.UserRepository
	mailer Mailer
	mq     queue.MessageQueue
	log    *zap.Logger
	now    func() time.Time
}

func NewService(repo ports.NotificationRepository, users ports.UserRepository, mailer Mailer, mq queue.MessageQueue, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		mailer: mailer,
		mq:     mq,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Notify creates one notification per distinct recipient. Delivery by queue
// or email is best effort and never fails the call once notifications are stored.
func (s *Service) Notify(ctx context.Context, userIDs []string, kind domain.NotificationKind, title, body string) error {
	recipients := distinct(userIDs)
	if len(recipients) == 0 {
		return nil
	}

	now := s.now()
	notifications := make([]domain.Notification, 0, len(recipients))
	for _, userID := range recipients {
		notifications = append(notifications, domain.Notification{
			ID:        uuid.New().String(),
			UserID:    userID,
			Kind:      kind,
			Title:     title,
			Body:      body,
			CreatedAt: now,
		})
	}

	if err := s.repo.SaveAll(ctx, notifications); err != nil {
		return domain.NewInternalError("failed to save notifications", err)
	}
	telemetry.NotificationsSentTotal.WithLabelValues("in_app").Add(float64(len(notifications)))

	for i := range notifications {
		n := notifications[i]
		err := queue.PublishEvent(s.mq, domain.SubjectNotificationCreated, domain.Event{
			Type:    domain.SubjectNotificationCreated,
			UserID:  n.UserID,
			Payload: n,
			SentAt:  now,
		})
		if err != nil {
			s.log.Warn("failed to publish notification",
				zap.String("notification_id", n.ID),
				zap.String("user_id", n.UserID),
				zap.Error(err),
			)
		}
	}

	s.email(ctx, recipients, title, body)

	s.log.Debug("notifications created",
		zap.String("kind", string(kind)),
		zap.Int("recipients", len(recipients)),
	)
	return nil
}

// NotifyStaff notifies every active admin and support officer.
func (s *Service) NotifyStaff(ctx context.Context, kind domain.NotificationKind, title, body string) error {
	staff, err := s.users.FindByRoles(ctx, []domain.UserRole{domain.UserRoleAdmin, domain.UserRoleSupportOfficer})
	if err != nil {
		return domain.NewInternalError("failed to load staff", err)
	}

	ids := make([]string, 0, len(staff))
	for _, u := range staff {
		ids = append(ids, u.ID)
	}
	return s.Notify(ctx, ids, kind, title, body)
}

func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.repo.FindByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, domain.NewInternalError("failed to list notifications", err)
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return notifications, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return err
		}
		return domain.NewInternalError("failed to mark notification read", err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return domain.NewInternalError("failed to mark notifications read", err)
	}
	return nil
}

func (s *Service) email(ctx context.Context, userIDs []string, title, body string) {
	if s.mailer == nil {
		return
	}
	for _, id := range userIDs {
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			s.log.Warn("failed to load notification recipient", zap.String("user_id", id), zap.Error(err))
			continue
		}
		if user == nil || !user.NotifyByEmail || user.Email == "" {
			continue
		}
		if err := s.mailer.SendNotification(ctx, user, title, body); err != nil {
			s.log.Warn("failed to email notification", zap.String("user_id", id), zap.Error(err))
			continue
		}
		telemetry.NotificationsSentTotal.WithLabelValues("email").Inc()
	}
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ ports.NotificationService = (*Service)(nil)
