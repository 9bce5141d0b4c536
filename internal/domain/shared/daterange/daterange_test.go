package daterange

import (
	"errors"
	"testing"
	"time"

	"homestay/internal/domain/shared/fault"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTruncatesToCalendarDays(t *testing.T) {
	dr, err := New(time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC), time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dr.Start.Equal(date(2024, 1, 1)) || !dr.End.Equal(date(2024, 1, 5)) {
		t.Fatalf("unexpected bounds %v %v", dr.Start, dr.End)
	}
	if dr.Nights() != 4 {
		t.Fatalf("expected 4 nights, got %d", dr.Nights())
	}
}

func TestNewRejectsEmptyAndInvertedRanges(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"same day", date(2024, 1, 1), date(2024, 1, 1)},
		{"same day different hours", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)},
		{"inverted", date(2024, 1, 5), date(2024, 1, 1)},
		{"zero", time.Time{}, date(2024, 1, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.start, tc.end)
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
			if fault.KindOf(err) != fault.InvalidInput {
				t.Fatalf("expected invalid input kind")
			}
		})
	}
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a := DateRange{Start: date(2024, 1, 1), End: date(2024, 1, 5)}
	cases := []struct {
		name string
		b    DateRange
		want bool
	}{
		{"shifted", DateRange{Start: date(2024, 1, 2), End: date(2024, 1, 6)}, true},
		{"back to back", DateRange{Start: date(2024, 1, 5), End: date(2024, 1, 8)}, false},
		{"ends at start", DateRange{Start: date(2023, 12, 28), End: date(2024, 1, 1)}, false},
		{"inside", DateRange{Start: date(2024, 1, 2), End: date(2024, 1, 3)}, true},
		{"covering", DateRange{Start: date(2023, 12, 1), End: date(2024, 2, 1)}, true},
	}
	for _, tc := range cases {
		if got := a.Overlaps(tc.b); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
		if got := tc.b.Overlaps(a); got != tc.want {
			t.Errorf("%s (reversed): expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestOverlapDaysClampsToWindow(t *testing.T) {
	window := DateRange{Start: date(2024, 3, 1), End: date(2024, 3, 31)}
	booking := DateRange{Start: date(2024, 2, 27), End: date(2024, 3, 4)}
	if got := window.OverlapDays(booking); got != 3 {
		t.Fatalf("expected 3 overlapping days, got %d", got)
	}
	outside := DateRange{Start: date(2024, 4, 1), End: date(2024, 4, 3)}
	if got := window.OverlapDays(outside); got != 0 {
		t.Fatalf("expected no overlap, got %d", got)
	}
}
