// Package analytics derives host dashboard figures from properties and bookings.
// Nothing here is cached; every call recomputes from the rows it is given.
package analytics

import (
	"math"
	"slices"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/properties"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

const (
	UpcomingLimit   = 5
	OccupancyWindow = 30
)

type Input struct {
	Properties []*properties.Property
	Bookings   []*booking.Booking
	Now        time.Time
	// Currency of the earnings figure. Bookings priced in another currency are skipped.
	Currency string
}

type Dashboard struct {
	PropertyCount   int
	BookingCount    int
	Upcoming        []*booking.Booking
	MonthlyEarnings money.Money
	OccupancyRate   float64
}

func Compute(in Input) Dashboard {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := daterange.Day(now)

	return Dashboard{
		PropertyCount:   len(in.Properties),
		BookingCount:    len(in.Bookings),
		Upcoming:        upcoming(in.Bookings, today),
		MonthlyEarnings: monthlyEarnings(in.Bookings, today, in.Currency),
		OccupancyRate:   occupancy(in.Bookings, len(in.Properties), today),
	}
}

func upcoming(bookings []*booking.Booking, today time.Time) []*booking.Booking {
	var out []*booking.Booking
	for _, b := range bookings {
		if b.Status != booking.StatusPending && b.Status != booking.StatusConfirmed {
			continue
		}
		if b.Range.Start.Before(today) {
			continue
		}
		out = append(out, b)
	}
	slices.SortStableFunc(out, func(a, b *booking.Booking) int {
		if c := a.Range.Start.Compare(b.Range.Start); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if len(out) > UpcomingLimit {
		out = out[:UpcomingLimit]
	}
	return out
}

// monthlyEarnings sums completed bookings whose stay ended in the current calendar month.
func monthlyEarnings(bookings []*booking.Booking, today time.Time, currency string) money.Money {
	total := money.Zero(currency)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	for _, b := range bookings {
		if b.Status != booking.StatusCompleted {
			continue
		}
		if b.Range.End.Before(monthStart) || !b.Range.End.Before(monthEnd) {
			continue
		}
		if sum, err := total.Add(b.TotalPrice); err == nil {
			total = sum
		}
	}
	return total
}

// occupancy is the share of property-nights in the next 30 days held by confirmed bookings.
func occupancy(bookings []*booking.Booking, propertyCount int, today time.Time) float64 {
	if propertyCount == 0 {
		return 0
	}
	window := daterange.DateRange{Start: today, End: today.AddDate(0, 0, OccupancyWindow)}
	booked := 0
	for _, b := range bookings {
		if b.Status != booking.StatusConfirmed {
			continue
		}
		booked += window.OverlapDays(b.Range)
	}
	rate := float64(booked) / float64(propertyCount*OccupancyWindow) * 100
	return math.Round(rate*100) / 100
}
