package booking

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/chargehub/chargehub-api/internal/domain"
)

func TestComputeWindow_ThreeSlots(t *testing.T) {
	window, err := ComputeWindow("2024-05-01T09:00:00Z", 30*time.Minute, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	wantStart := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	wantDay := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	if !window.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, window.Start)
	}
	if !window.End.Equal(wantEnd) {
		t.Errorf("expected end %v, got %v", wantEnd, window.End)
	}
	if !window.Day.Equal(wantDay) {
		t.Errorf("expected day %v, got %v", wantDay, window.Day)
	}
}

func TestComputeWindow_EndIsSlotMultiple(t *testing.T) {
	for _, tc := range []struct {
		size, count int
	}{
		{15, 1}, {30, 4}, {45, 2}, {60, 16},
	} {
		window, err := ComputeWindow("2024-05-01T06:00:00Z", time.Duration(tc.size)*time.Minute, tc.count)
		if err != nil {
			t.Fatalf("size %d count %d: unexpected error %v", tc.size, tc.count, err)
		}
		got := window.End.Sub(window.Start)
		want := time.Duration(tc.size*tc.count) * time.Minute
		if got != want {
			t.Errorf("size %d count %d: expected duration %v, got %v", tc.size, tc.count, want, got)
		}
	}
}

func TestComputeWindow_NormalizesOffsetToUTC(t *testing.T) {
	window, err := ComputeWindow("2024-05-01T01:30:00+02:00", 30*time.Minute, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if window.Start.Location() != time.UTC {
		t.Errorf("expected UTC start, got %v", window.Start.Location())
	}
	if !window.Start.Equal(time.Date(2024, 4, 30, 23, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", window.Start)
	}
	// The day bucket follows the UTC calendar date
	if !window.Day.Equal(time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected day 2024-04-30, got %v", window.Day)
	}
}

func TestComputeWindow_ZonelessTimestampIsUTC(t *testing.T) {
	window, err := ComputeWindow("2024-05-01T09:00:00", 30*time.Minute, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !window.Start.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", window.Start)
	}
}

func TestComputeWindow_InvalidTimestamp(t *testing.T) {
	for _, raw := range []string{"", "tomorrow", "2024-13-45T09:00:00Z", "09:00"} {
		_, err := ComputeWindow(raw, 30*time.Minute, 1)
		if !errors.Is(err, domain.ErrInvalidTimestamp) {
			t.Errorf("%q: expected ErrInvalidTimestamp, got %v", raw, err)
		}
	}
}

func TestComputeWindow_InvalidSlotCount(t *testing.T) {
	for _, count := range []int{0, -1} {
		_, err := ComputeWindow("2024-05-01T09:00:00Z", 30*time.Minute, count)
		if !errors.Is(err, domain.ErrInvalidSlotCount) {
			t.Errorf("count %d: expected ErrInvalidSlotCount, got %v", count, err)
		}
	}
}

func TestComputeWindow_BoundedToOneDay(t *testing.T) {
	if _, err := ComputeWindow("2024-05-01T00:00:00Z", 30*time.Minute, 48); err != nil {
		t.Fatalf("expected a full day to be accepted, got %v", err)
	}

	for _, count := range []int{49, math.MaxInt} {
		_, err := ComputeWindow("2024-05-01T09:00:00Z", 30*time.Minute, count)
		if !errors.Is(err, domain.ErrTooManySlots) {
			t.Errorf("count %d: expected ErrTooManySlots, got %v", count, err)
		}
	}
}

func TestComputeWindow_SlotSizeNotConfigured(t *testing.T) {
	_, err := ComputeWindow("2024-05-01T09:00:00Z", 0, 1)
	if domain.KindOf(err) != domain.KindInternal {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestParseDay(t *testing.T) {
	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-05-01", "2024-05-01T17:45:00Z", " 2024-05-01 "} {
		day, err := ParseDay(raw)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", raw, err)
		}
		if !day.Equal(want) {
			t.Errorf("%q: expected %v, got %v", raw, want, day)
		}
	}

	if _, err := ParseDay("01/05/2024"); !errors.Is(err, domain.ErrInvalidTimestamp) {
		t.Errorf("expected ErrInvalidTimestamp, got %v", err)
	}
}
