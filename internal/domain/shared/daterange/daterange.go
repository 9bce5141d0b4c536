package daterange

import (
	"time"

	"homestay/internal/domain/shared/fault"
)

var (
	ErrInvalidRange = fault.New(fault.InvalidInput, "daterange: end date must be after start date")
)

const day = 24 * time.Hour

// DateRange is a half-open interval [Start, End) of whole UTC calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// New truncates both bounds to their UTC calendar day and validates the range.
func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day returns midnight UTC of the calendar day t falls on in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts calendar days between Start and End.
func (dr DateRange) Nights() int {
	return daysBetween(Day(dr.Start), Day(dr.End))
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return !t.Before(dr.Start) && t.Before(dr.End)
}

// OverlapDays returns the number of days both ranges share.
func (dr DateRange) OverlapDays(other DateRange) int {
	if !dr.Overlaps(other) {
		return 0
	}
	start := dr.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := dr.End
	if other.End.Before(end) {
		end = other.End
	}
	return daysBetween(Day(start), Day(end))
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Round(day) / day)
}
