package dto

import "homestay/internal/domain/analytics"

type HostDashboard struct {
	PropertyCount   int       `json:"property_count"`
	BookingCount    int       `json:"booking_count"`
	Upcoming        []Booking `json:"upcoming_bookings"`
	MonthlyEarnings MoneyDTO  `json:"monthly_earnings"`
	OccupancyRate   float64   `json:"occupancy_rate"`
}

func MapDashboard(d analytics.Dashboard) HostDashboard {
	out := HostDashboard{
		PropertyCount:   d.PropertyCount,
		BookingCount:    d.BookingCount,
		Upcoming:        make([]Booking, 0, len(d.Upcoming)),
		MonthlyEarnings: MapMoney(d.MonthlyEarnings),
		OccupancyRate:   d.OccupancyRate,
	}
	for _, b := range d.Upcoming {
		out.Upcoming = append(out.Upcoming, MapBooking(b))
	}
	return out
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
