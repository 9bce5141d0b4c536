package analytics

import (
	"testing"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/properties"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func stay(id string, status booking.Status, start, end time.Time, amount int64) *booking.Booking {
	return &booking.Booking{
		ID:         booking.ID(id),
		Status:     status,
		Range:      daterange.DateRange{Start: start, End: end},
		TotalPrice: money.Must(amount, "USD"),
		CreatedAt:  day(1, 1),
	}
}

func TestComputeWithoutPropertiesIsZero(t *testing.T) {
	d := Compute(Input{Now: day(3, 10), Currency: "USD"})
	if d.PropertyCount != 0 || d.BookingCount != 0 || d.OccupancyRate != 0 || !d.MonthlyEarnings.IsZero() {
		t.Fatalf("expected empty dashboard, got %+v", d)
	}
	if len(d.Upcoming) != 0 {
		t.Fatalf("expected no upcoming bookings")
	}
}

func TestComputeDashboard(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	props := []*properties.Property{{ID: "p1"}, {ID: "p2"}}
	bookings := []*booking.Booking{
		stay("done-in-march", booking.StatusCompleted, day(3, 1), day(3, 5), 400),
		stay("done-in-feb", booking.StatusCompleted, day(2, 1), day(2, 3), 999),
		stay("started-feb-ended-march", booking.StatusCompleted, day(2, 27), day(3, 2), 300),
		stay("confirmed-soon", booking.StatusConfirmed, day(3, 12), day(3, 22), 1000),
		stay("confirmed-past-window", booking.StatusConfirmed, day(4, 5), day(4, 15), 1000),
		stay("pending-next", booking.StatusPending, day(3, 11), day(3, 13), 200),
		stay("cancelled", booking.StatusCancelled, day(3, 11), day(3, 30), 200),
		stay("ongoing", booking.StatusConfirmed, day(3, 8), day(3, 12), 100),
	}
	d := Compute(Input{Properties: props, Bookings: bookings, Now: now, Currency: "USD"})

	if d.PropertyCount != 2 || d.BookingCount != 8 {
		t.Fatalf("unexpected counts %+v", d)
	}
	if d.MonthlyEarnings.Amount != 700 {
		t.Fatalf("expected march earnings 700, got %d", d.MonthlyEarnings.Amount)
	}
	wantUpcoming := []booking.ID{"pending-next", "confirmed-soon", "confirmed-past-window"}
	if len(d.Upcoming) != len(wantUpcoming) {
		t.Fatalf("expected %d upcoming, got %d", len(wantUpcoming), len(d.Upcoming))
	}
	for i, id := range wantUpcoming {
		if d.Upcoming[i].ID != id {
			t.Fatalf("upcoming[%d]: expected %s, got %s", i, id, d.Upcoming[i].ID)
		}
	}
	// window [03-10, 04-09): confirmed-soon 10 days, past-window 4 days, ongoing 2 days
	if d.OccupancyRate != 26.67 {
		t.Fatalf("expected occupancy 26.67, got %v", d.OccupancyRate)
	}
}

func TestUpcomingIsCappedAtFive(t *testing.T) {
	var bookings []*booking.Booking
	for i := 1; i <= 7; i++ {
		bookings = append(bookings, stay(string(rune('a'+i)), booking.StatusPending, day(5, 10-i), day(5, 12), 10))
	}
	d := Compute(Input{Properties: []*properties.Property{{ID: "p"}}, Bookings: bookings, Now: day(5, 1), Currency: "USD"})
	if len(d.Upcoming) != UpcomingLimit {
		t.Fatalf("expected %d upcoming, got %d", UpcomingLimit, len(d.Upcoming))
	}
	if !d.Upcoming[0].Range.Start.Equal(day(5, 3)) {
		t.Fatalf("expected earliest first, got %v", d.Upcoming[0].Range.Start)
	}
}
