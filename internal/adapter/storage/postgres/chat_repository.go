package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

type ChatRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewChatRepository(db *gorm.DB, log *zap.Logger) ports.ChatRepository {
	return &ChatRepository{db: db, log: log}
}

// FindOrCreate returns the chat between the two participants, creating it
// from chat when none exists yet.
func (r *ChatRepository) FindOrCreate(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	a, b := domain.OrderedPair(chat.ParticipantA, chat.ParticipantB)
	chat.ParticipantA, chat.ParticipantB = a, b

	var existing domain.Chat
	err := r.db.WithContext(ctx).
		Where(domain.Chat{ParticipantA: a, ParticipantB: b}).
		Attrs(*chat).
		FirstOrCreate(&existing).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with another insert of the same pair
		err = r.db.WithContext(ctx).First(&existing, "participant_a = ? AND participant_b = ?", a, b).Error
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.db.WithContext(ctx).First(&chat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepository) FindByParticipant(ctx context.Context, userID string) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST, created_at DESC").
		Find(&chats).Error
	return chats, err
}

// SaveMessage stores the message and bumps the chat's last activity
func (r *ChatRepository) SaveMessage(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Chat{}).
			Where("id = ?", msg.ChatID).
			Update("last_message_at", msg.CreatedAt).Error
	})
}

// FindMessages pages backwards from the newest message
func (r *ChatRepository) FindMessages(ctx context.Context, chatID string, limit, offset int) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *ChatRepository) MarkRead(ctx context.Context, chatID, readerID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", chatID, readerID).
		Update("read_at", at).Error
}
