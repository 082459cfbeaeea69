package domain

import (
	"time"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusUpcoming  BookingStatus = "upcoming"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// IsTerminal reports whether no further transition may leave this status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled || s == BookingStatusNoShow
}

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusUpcoming, BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

// Booking is a reservation of one or more contiguous slots on a charger connector.
type Booking struct {
	ID              string        `json:"_id" gorm:"primaryKey"`
	EVUserID        string        `json:"ev_user_id" gorm:"index;not null"`
	VehicleID       string        `json:"vehicle_id" gorm:"not null"`
	StationID       string        `json:"station_id" gorm:"index;not null"`
	ChargerID       string        `json:"charger_id" gorm:"index;not null"`
	ConnectorTypeID string        `json:"connector_type_id" gorm:"not null"`
	BookingDate     time.Time     `json:"booking_date" gorm:"index;not null"`
	StartTime       time.Time     `json:"start_time" gorm:"not null"`
	EndTime         time.Time     `json:"end_time" gorm:"not null"`
	NoOfSlots       int           `json:"no_of_slots" gorm:"not null"`
	Status          BookingStatus `json:"status" gorm:"index;not null"`
	ArrivalTime     *time.Time    `json:"arrival_time,omitempty"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
	Cost            *float64      `json:"cost,omitempty"`

	// Snapshot of referenced entities, refreshed by the repository's projection step.
	StationName  string `json:"station_name,omitempty"`
	ChargerName  string `json:"charger_name,omitempty"`
	PlugType     string `json:"plug_type,omitempty"`
	VehicleLabel string `json:"vehicle_label,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingGuard is the stored state a conditional booking update requires.
// The update is refused when the stored row no longer matches.
type BookingGuard struct {
	Status BookingStatus

	// NoArrival additionally requires that no arrival has been recorded
	NoArrival bool
}

// Slot is one slot-sized interval of a booking. It is derived and never stored.
type Slot struct {
	BookingID   string    `json:"_id"`
	BookingDate time.Time `json:"booking_date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// BookingConfig holds booking subsystem settings fixed for the process lifetime.
type BookingConfig struct {
	// SlotSizeMinutes is the length of one slot
	SlotSizeMinutes int

	// MaxSlotsPerBooking bounds no_of_slots; zero leaves only the MaxBookingSpan cap
	MaxSlotsPerBooking int

	// PreventOverlap rejects bookings that overlap an upcoming booking on the same connector
	PreventOverlap bool

	// SlotsCacheTTL is how long expanded slot lists stay cached
	SlotsCacheTTL time.Duration
}

// DefaultBookingConfig returns sensible defaults
func DefaultBookingConfig() *BookingConfig {
	return &BookingConfig{
		SlotSizeMinutes:    30,
		MaxSlotsPerBooking: 16,
		PreventOverlap:     true,
		SlotsCacheTTL:      time.Minute,
	}
}

// SlotDuration returns the configured slot length.
func (c *BookingConfig) SlotDuration() time.Duration {
	return time.Duration(c.SlotSizeMinutes) * time.Minute
}

// MaxBookingSpan bounds a single booking even when MaxSlotsPerBooking is zero.
const MaxBookingSpan = 24 * time.Hour

// SlotLimit returns the largest no_of_slots a booking may request.
func (c *BookingConfig) SlotLimit() int {
	size := c.SlotDuration()
	if size <= 0 {
		return 0
	}
	limit := int(MaxBookingSpan / size)
	if c.MaxSlotsPerBooking > 0 && c.MaxSlotsPerBooking < limit {
		limit = c.MaxSlotsPerBooking
	}
	return limit
}

// BookingSummary counts bookings per status
type BookingSummary struct {
	Upcoming  int64 `json:"upcoming"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	NoShow    int64 `json:"no_show"`
}
