package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/chargehub/chargehub-api/internal/domain"
)

// Window is the time range a booking request covers.
type Window struct {
	Day   time.Time
	Start time.Time
	End   time.Time
}

// Accepted booking_date_time layouts. Layouts without a zone are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseInstant parses an ISO-8601 timestamp and normalizes it to UTC.
func ParseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.ErrInvalidTimestamp
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.Wrap(domain.ErrInvalidTimestamp, fmt.Errorf("unrecognised timestamp %q", raw))
}

// ParseDay accepts a calendar date (YYYY-MM-DD) or a full timestamp and
// returns midnight UTC of that day.
func ParseDay(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(raw)); err == nil {
		return t, nil
	}
	t, err := ParseInstant(raw)
	if err != nil {
		return time.Time{}, err
	}
	return DayOf(t), nil
}

// DayOf truncates t to 00:00:00 UTC of its calendar date.
func DayOf(t time.Time) time.Time {
	return now.With(t.UTC()).BeginningOfDay()
}

// ComputeWindow maps a requested start, slot size and slot count to the day
// bucket and [start, end) range of the booking. It has no side effects.
// A window never spans more than domain.MaxBookingSpan.
func ComputeWindow(requested string, slotSize time.Duration, slotCount int) (Window, error) {
	start, err := ParseInstant(requested)
	if err != nil {
		return Window{}, err
	}
	if slotCount <= 0 {
		return Window{}, domain.ErrInvalidSlotCount
	}
	if slotSize <= 0 {
		return Window{}, domain.NewInternalError("slot size is not configured", fmt.Errorf("slot size %s", slotSize))
	}
	if limit := int(domain.MaxBookingSpan / slotSize); slotCount > limit {
		return Window{}, domain.Wrap(domain.ErrTooManySlots, fmt.Errorf("maximum is %d", limit))
	}

	return Window{
		Day:   DayOf(start),
		Start: start,
		End:   start.Add(time.Duration(slotCount) * slotSize),
	}, nil
}
