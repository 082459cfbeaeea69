package domain

import (
	"time"
)

// Chat is a two-party conversation. ParticipantA always sorts before
// ParticipantB so a pair maps to exactly one chat.
type Chat struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	ParticipantA  string     `json:"participant_a" gorm:"uniqueIndex:idx_chat_pair;not null"`
	ParticipantB  string     `json:"participant_b" gorm:"uniqueIndex:idx_chat_pair;not null"`
	BookingID     string     `json:"booking_id,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasParticipant reports whether userID takes part in the chat.
func (c *Chat) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// OrderedPair returns the two ids in the canonical chat order.
func OrderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

type Message struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	ChatID    string     `json:"chat_id" gorm:"index;not null"`
	SenderID  string     `json:"sender_id" gorm:"not null"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}
