package domain

import (
	"time"
)

type ReportStatus string

const (
	ReportStatusOpen     ReportStatus = "open"
	ReportStatusResolved ReportStatus = "resolved"
)

// Report is a complaint or issue filed by any user, optionally about a station or booking
type Report struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	ReporterID  string       `json:"reporter_id" gorm:"index;not null"`
	StationID   string       `json:"station_id,omitempty" gorm:"index"`
	BookingID   string       `json:"booking_id,omitempty"`
	Subject     string       `json:"subject"`
	Description string       `json:"description"`
	Status      ReportStatus `json:"status" gorm:"index"`
	Resolution  string       `json:"resolution,omitempty"`
	ResolvedBy  string       `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// File is an uploaded blob kept in file storage
type File struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	OwnerID       string    `json:"owner_id" gorm:"index"`
	FileName      string    `json:"file_name"`
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	Path          string    `json:"-"`
	ThumbnailPath *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// DashboardStats is the admin overview
type DashboardStats struct {
	TotalUsers      int64          `json:"total_users"`
	ApprovedStation int64          `json:"approved_stations"`
	PendingStations int64          `json:"pending_stations"`
	OpenReports     int64          `json:"open_reports"`
	Bookings        BookingSummary `json:"bookings"`
}
