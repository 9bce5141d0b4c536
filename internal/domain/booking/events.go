package booking

import (
	"time"

	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/money"
)

const (
	EventRequested = "booking.requested"
	EventConfirmed = "booking.confirmed"
	EventCompleted = "booking.completed"
	EventCancelled = "booking.cancelled"
)

type Requested struct {
	events.Base
	PropertyID string      `json:"property_id"`
	TravelerID string      `json:"traveler_id"`
	HostID     string      `json:"host_id"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	Total      money.Money `json:"total_price"`
}

type StatusChanged struct {
	events.Base
	From   Status `json:"from"`
	To     Status `json:"to"`
	Actor  string `json:"actor_id"`
	HostID string `json:"host_id"`
}

func eventNameFor(s Status) string {
	switch s {
	case StatusConfirmed:
		return EventConfirmed
	case StatusCompleted:
		return EventCompleted
	case StatusCancelled:
		return EventCancelled
	default:
		return "booking." + string(s)
	}
}
