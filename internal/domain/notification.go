package domain

import (
	"time"
)

type NotificationKind string

const (
	NotificationBookingCreated   NotificationKind = "booking_created"
	NotificationBookingCancelled NotificationKind = "booking_cancelled"
	NotificationBookingUpdated   NotificationKind = "booking_updated"
	NotificationStationReviewed  NotificationKind = "station_reviewed"
	NotificationStationSubmitted NotificationKind = "station_submitted"
	NotificationReportSubmitted  NotificationKind = "report_submitted"
	NotificationReportResolved   NotificationKind = "report_resolved"
	NotificationChatMessage      NotificationKind = "chat_message"
)

type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	UserID    string           `json:"user_id" gorm:"index;not null"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Read      bool             `json:"read" gorm:"index"`
	CreatedAt time.Time        `json:"created_at"`
}

// Event is the envelope published on the message queue and pushed over websockets.
type Event struct {
	Type    string      `json:"type"`
	UserID  string      `json:"user_id,omitempty"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// Queue subjects
const (
	SubjectNotificationCreated = "notification.created"
	SubjectBookingEvents       = "booking.events"
	SubjectChatMessage         = "chat.message"
)
