package booking

import (
	"testing"
	"time"

	"github.com/chargehub/chargehub-api/internal/domain"
)

func TestExpandSlots_CountAndContiguity(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	bookings := []domain.Booking{
		{ID: "b1", BookingDate: day, StartTime: day.Add(9 * time.Hour), NoOfSlots: 3},
		{ID: "b2", BookingDate: day, StartTime: day.Add(14 * time.Hour), NoOfSlots: 1},
	}

	slots := ExpandSlots(bookings, 30*time.Minute)

	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}

	expectedStarts := []time.Time{
		day.Add(9 * time.Hour),
		day.Add(9*time.Hour + 30*time.Minute),
		day.Add(10 * time.Hour),
		day.Add(14 * time.Hour),
	}
	for i, slot := range slots {
		if !slot.StartTime.Equal(expectedStarts[i]) {
			t.Errorf("slot %d: expected start %v, got %v", i, expectedStarts[i], slot.StartTime)
		}
		if slot.EndTime.Sub(slot.StartTime) != 30*time.Minute {
			t.Errorf("slot %d: expected 30m duration, got %v", i, slot.EndTime.Sub(slot.StartTime))
		}
		if !slot.BookingDate.Equal(day) {
			t.Errorf("slot %d: expected booking date %v, got %v", i, day, slot.BookingDate)
		}
	}

	// Slots of one booking touch end to start
	for i := 1; i < 3; i++ {
		if !slots[i].StartTime.Equal(slots[i-1].EndTime) {
			t.Errorf("slot %d does not start where slot %d ends", i, i-1)
		}
	}
	if slots[0].BookingID != "b1" || slots[3].BookingID != "b2" {
		t.Errorf("slots carry wrong booking ids: %s, %s", slots[0].BookingID, slots[3].BookingID)
	}
}

func TestExpandSlots_SkipsEmptyBookings(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	slots := ExpandSlots([]domain.Booking{{ID: "b0", StartTime: start, NoOfSlots: 0}}, 30*time.Minute)

	if len(slots) != 0 {
		t.Errorf("expected no slots, got %d", len(slots))
	}
}

func TestExpandSlots_NoBookings(t *testing.T) {
	slots := ExpandSlots(nil, 30*time.Minute)

	if slots == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %d", len(slots))
	}
}

func TestExpandSlots_CapsOversizedBooking(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	slots := ExpandSlots([]domain.Booking{{ID: "huge", StartTime: start, NoOfSlots: 1 << 40}}, time.Hour)

	if len(slots) != 24 {
		t.Errorf("expected expansion capped at 24 slots, got %d", len(slots))
	}
}

func TestOccupying_DropsCancelledAndOtherChargers(t *testing.T) {
	bookings := []domain.Booking{
		{ID: "a", ChargerID: "c1", Status: domain.BookingStatusUpcoming},
		{ID: "b", ChargerID: "c1", Status: domain.BookingStatusCancelled},
		{ID: "c", ChargerID: "c2", Status: domain.BookingStatusCompleted},
		{ID: "d", ChargerID: "c1", Status: domain.BookingStatusNoShow},
	}

	all := occupying(bookings, "")
	if len(all) != 3 {
		t.Errorf("expected 3 occupying bookings, got %d", len(all))
	}

	c1 := occupying(bookings, "c1")
	if len(c1) != 2 || c1[0].ID != "a" || c1[1].ID != "d" {
		t.Errorf("unexpected bookings for c1: %+v", c1)
	}
}
