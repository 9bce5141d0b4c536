package availability

import (
	"errors"
	"testing"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/fault"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func span(t *testing.T, from, to time.Time) daterange.DateRange {
	t.Helper()
	r, err := daterange.New(from, to)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return r
}

func TestBuildClipsAndSkipsCancelled(t *testing.T) {
	window := span(t, day(time.January, 1), day(time.January, 11))
	bookings := []*booking.Booking{
		{ID: "late", Range: span(t, day(time.January, 8), day(time.January, 14)), Status: booking.StatusConfirmed},
		{ID: "early", Range: span(t, time.Date(2023, time.December, 30, 0, 0, 0, 0, time.UTC), day(time.January, 3)), Status: booking.StatusPending},
		{ID: "gone", Range: span(t, day(time.January, 4), day(time.January, 6)), Status: booking.StatusCancelled},
		{ID: "outside", Range: span(t, day(time.February, 1), day(time.February, 3)), Status: booking.StatusPending},
	}

	cal, err := Build("p-1", window, bookings)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(cal.Blocks) != 2 || cal.Blocks[0].BookingID != "early" || cal.Blocks[1].BookingID != "late" {
		t.Fatalf("unexpected blocks %+v", cal.Blocks)
	}
	if got := cal.Blocks[1].Range.End; !got.Equal(day(time.January, 11)) {
		t.Fatalf("late block not clipped: %v", got)
	}
	if cal.BookedNights() != 5 || cal.FreeNights() != 5 {
		t.Fatalf("booked %d free %d", cal.BookedNights(), cal.FreeNights())
	}
	if cal.IsFree(day(time.January, 2)) || !cal.IsFree(day(time.January, 4)) {
		t.Fatal("cancelled booking must not block, pending must")
	}
	if !cal.CanReserve(span(t, day(time.January, 3), day(time.January, 8))) {
		t.Fatal("gap between blocks should be reservable")
	}
	if cal.CanReserve(span(t, day(time.January, 7), day(time.January, 9))) {
		t.Fatal("overlap with confirmed booking must not be reservable")
	}
}

func TestBuildRejectsHugeWindow(t *testing.T) {
	window := span(t, day(time.January, 1), day(time.January, 1).AddDate(2, 0, 0))
	_, err := Build("p-1", window, nil)
	if !errors.Is(err, ErrWindowTooLarge) || fault.KindOf(err) != fault.InvalidInput {
		t.Fatalf("expected window error, got %v", err)
	}
}
