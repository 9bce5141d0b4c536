package reviews

import "homestay/internal/domain/shared/events"

const EventSubmitted = "review.submitted"

type Submitted struct {
	events.Base
	PropertyID string `json:"property_id"`
	UserID     string `json:"user_id"`
	Rating     int    `json:"rating"`
}
