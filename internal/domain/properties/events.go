package properties

import "homestay/internal/domain/shared/events"

const (
	EventCreated       = "property.created"
	EventUpdated       = "property.updated"
	EventDeleted       = "property.deleted"
	EventRatingChanged = "property.rating_changed"
)

type Created struct {
	events.Base
	HostID string `json:"host_id"`
}

type Updated struct {
	events.Base
}

type Deleted struct {
	events.Base
	HostID string `json:"host_id"`
}

type RatingChanged struct {
	events.Base
	AverageRating float64 `json:"average_rating"`
	NumReviews    int     `json:"num_reviews"`
}
