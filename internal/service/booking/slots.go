package booking

import (
	"time"

	"github.com/chargehub/chargehub-api/internal/domain"
)

// ExpandSlots turns each booking into no_of_slots contiguous slot records of
// size, in chronological order from the booking's start time. Bookings with
// fewer than one slot cannot be created and are skipped, and no booking
// expands past domain.MaxBookingSpan.
func ExpandSlots(bookings []domain.Booking, size time.Duration) []domain.Slot {
	slots := make([]domain.Slot, 0, len(bookings))
	if size <= 0 {
		return slots
	}
	limit := int(domain.MaxBookingSpan / size)

	for _, b := range bookings {
		if b.NoOfSlots < 1 {
			continue
		}
		for i := 0; i < min(b.NoOfSlots, limit); i++ {
			start := b.StartTime.Add(time.Duration(i) * size)
			slots = append(slots, domain.Slot{
				BookingID:   b.ID,
				BookingDate: b.BookingDate,
				StartTime:   start,
				EndTime:     start.Add(size),
			})
		}
	}

	return slots
}

// occupying drops bookings that no longer hold their slots.
func occupying(bookings []domain.Booking, chargerID string) []domain.Booking {
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == domain.BookingStatusCancelled {
			continue
		}
		if chargerID != "" && b.ChargerID != chargerID {
			continue
		}
		out = append(out, b)
	}
	return out
}
