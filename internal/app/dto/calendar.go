package dto

import (
	"time"

	"homestay/internal/domain/availability"
)

type CalendarBlock struct {
	BookingID string `json:"booking_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Status    string `json:"status"`
}

type Calendar struct {
	PropertyID   string          `json:"property_id"`
	From         string          `json:"from"`
	To           string          `json:"to"`
	Blocks       []CalendarBlock `json:"blocks"`
	BookedNights int             `json:"booked_nights"`
	FreeNights   int             `json:"free_nights"`
}

func MapCalendar(c availability.Calendar) Calendar {
	out := Calendar{
		PropertyID:   string(c.PropertyID),
		From:         c.Window.Start.Format(time.DateOnly),
		To:           c.Window.End.Format(time.DateOnly),
		Blocks:       make([]CalendarBlock, 0, len(c.Blocks)),
		BookedNights: c.BookedNights(),
		FreeNights:   c.FreeNights(),
	}
	for _, b := range c.Blocks {
		out.Blocks = append(out.Blocks, CalendarBlock{
			BookingID: string(b.BookingID),
			Start:     b.Range.Start.Format(time.DateOnly),
			End:       b.Range.End.Format(time.DateOnly),
			Status:    string(b.Status),
		})
	}
	return out
}
