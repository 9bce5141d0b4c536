// Package availability derives a property's occupancy calendar from its
// non-cancelled bookings. The bookings themselves stay the single source of
// truth; a calendar is never stored.
package availability

import (
	"slices"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/properties"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/fault"
)

// MaxWindowNights bounds a single calendar request.
const MaxWindowNights = 366

var ErrWindowTooLarge = fault.New(fault.InvalidInput, "availability: window must not exceed 366 nights")

type Block struct {
	Range     daterange.DateRange
	BookingID booking.ID
	Status    booking.Status
}

type Calendar struct {
	PropertyID properties.ID
	Window     daterange.DateRange
	Blocks     []Block
}

// Build clips the given bookings to window and orders them by start date.
// Cancelled bookings never block.
func Build(propertyID properties.ID, window daterange.DateRange, bookings []*booking.Booking) (Calendar, error) {
	if err := window.Validate(); err != nil {
		return Calendar{}, err
	}
	if window.Nights() > MaxWindowNights {
		return Calendar{}, ErrWindowTooLarge
	}
	cal := Calendar{PropertyID: propertyID, Window: window}
	for _, b := range bookings {
		if !b.Active() || !b.Range.Overlaps(window) {
			continue
		}
		cal.Blocks = append(cal.Blocks, Block{
			Range:     clip(b.Range, window),
			BookingID: b.ID,
			Status:    b.Status,
		})
	}
	slices.SortFunc(cal.Blocks, func(a, b Block) int { return a.Range.Start.Compare(b.Range.Start) })
	return cal, nil
}

func clip(r, window daterange.DateRange) daterange.DateRange {
	out := r
	if out.Start.Before(window.Start) {
		out.Start = window.Start
	}
	if out.End.After(window.End) {
		out.End = window.End
	}
	return out
}

func (c Calendar) CanReserve(r daterange.DateRange) bool {
	for _, block := range c.Blocks {
		if block.Range.Overlaps(r) {
			return false
		}
	}
	return true
}

func (c Calendar) BookedNights() int {
	n := 0
	for _, block := range c.Blocks {
		n += block.Range.Nights()
	}
	return n
}

func (c Calendar) FreeNights() int {
	return c.Window.Nights() - c.BookedNights()
}

// IsFree reports whether the night starting on day is unbooked.
func (c Calendar) IsFree(day time.Time) bool {
	day = daterange.Day(day)
	for _, block := range c.Blocks {
		if block.Range.ContainsDate(day) {
			return false
		}
	}
	return c.Window.ContainsDate(day)
}
