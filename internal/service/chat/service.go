package chat

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/queue"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

const (
	MaxMessageLength = 2000
	defaultPageSize  = 50
	maxPageSize      = 200
)

// Service handles two-party chats between drivers and station owners.
type Service struct {
	repo  ports.ChatRepository
	users ports.UserRepository
	mq    queue.MessageQueue
	log   *zap.Logger
	now   func() time.Time
}

func NewService(repo ports.ChatRepository, users ports.UserRepository, mq queue.MessageQueue, log *zap.Logger) *Service {
	return &Service{
		repo:  repo,
		users: users,
		mq:    mq,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Open returns the chat between userID and participantID, creating it on first use.
func (s *Service) Open(ctx context.Context, userID, participantID, bookingID string) (*domain.Chat, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, domain.NewValidationError("missing required fields: participant_id")
	}
	if participantID == userID {
		return nil, domain.NewValidationError("cannot open a chat with yourself")
	}

	participant, err := s.users.FindByID(ctx, participantID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load participant", err)
	}
	if participant == nil {
		return nil, domain.ErrUserNotFound
	}

	now := s.now()
	chat, err := s.repo.FindOrCreate(ctx, &domain.Chat{
		ID:           uuid.New().String(),
		ParticipantA: userID,
		ParticipantB: participantID,
		BookingID:    bookingID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to open chat", err)
	}
	return chat, nil
}

func (s *Service) ListChats(ctx context.Context, userID string) ([]domain.Chat, error) {
	chats, err := s.repo.FindByParticipant(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list chats", err)
	}
	if chats == nil {
		chats = []domain.Chat{}
	}
	return chats, nil
}

// Messages returns a page of messages, newest first, and marks the other
// participant's messages as read.
func (s *Service) Messages(ctx context.Context, userID, chatID string, limit, offset int) ([]domain.Message, error) {
	if _, err := s.participantChat(ctx, userID, chatID); err != nil {
		return nil, err
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

	messages, err := s.repo.FindMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, domain.NewInternalError("failed to load messages", err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	if err := s.repo.MarkRead(ctx, chatID, userID, s.now()); err != nil {
		s.log.Warn("failed to mark messages read", zap.String("chat_id", chatID), zap.Error(err))
	}
	return messages, nil
}

// Send stores a message and pushes it to the other participant.
func (s *Service) Send(ctx context.Context, userID, chatID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.NewValidationError("message body cannot be empty")
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return nil, domain.NewValidationError("message body is too long")
	}

	chat, err := s.participantChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:        uuid.New().String(),
		ChatID:    chat.ID,
		SenderID:  userID,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return nil, domain.NewInternalError("failed to save message", err)
	}

	recipient := chat.ParticipantA
	if recipient == userID {
		recipient = chat.ParticipantB
	}
	err = queue.PublishEvent(s.mq, domain.SubjectChatMessage, domain.Event{
		Type:    domain.SubjectChatMessage,
		UserID:  recipient,
		Payload: msg,
	})
	if err != nil {
		s.log.Warn("failed to publish chat message", zap.String("message_id", msg.ID), zap.Error(err))
	}

	return msg, nil
}

// participantChat hides chats the user is not part of behind not found.
func (s *Service) participantChat(ctx context.Context, userID, chatID string) (*domain.Chat, error) {
	chat, err := s.repo.FindByID(ctx, chatID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load chat", err)
	}
	if chat == nil || !chat.HasParticipant(userID) {
		return nil, domain.ErrChatNotFound
	}
	return chat, nil
}

var _ ports.ChatService = (*Service)(nil)
