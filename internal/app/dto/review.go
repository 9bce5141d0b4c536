package dto

import (
	"time"

	domainreviews "homestay/internal/domain/reviews"
)

type Review struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewCollection struct {
	Items  []Review `json:"items"`
	Total  int      `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}

type RatingSummary struct {
	PropertyID    string  `json:"property_id"`
	AverageRating float64 `json:"average_rating"`
	NumReviews    int     `json:"num_reviews"`
}

func MapReview(r *domainreviews.Review) Review {
	if r == nil {
		return Review{}
	}
	return Review{
		ID:         string(r.ID),
		PropertyID: string(r.PropertyID),
		UserID:     string(r.UserID),
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}
