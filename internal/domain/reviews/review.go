package reviews

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"homestay/internal/domain/properties"
	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/fault"
	"homestay/internal/domain/user"
)

var (
	ErrInvalidRating    = fault.New(fault.InvalidInput, "reviews: rating must be between 1 and 5")
	ErrCommentTooLong   = fault.New(fault.InvalidInput, "reviews: comment is too long")
	ErrNotEligible      = fault.New(fault.Forbidden, "reviews: must have stayed to review")
	ErrAlreadyReviewed  = fault.New(fault.Conflict, "reviews: already reviewed")
	ErrPropertyRequired = fault.New(fault.InvalidInput, "reviews: property is required")
	ErrAuthorRequired   = fault.New(fault.InvalidInput, "reviews: author is required")
)

const maxCommentLength = 2000

type ID string

// Review is immutable once submitted. One per property and author.
type Review struct {
	ID         ID
	PropertyID properties.ID
	UserID     user.ID
	Rating     int
	Comment    string
	CreatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	// Create inserts a review, failing with ErrAlreadyReviewed on a duplicate author.
	Create(ctx context.Context, review *Review) error
	Exists(ctx context.Context, propertyID properties.ID, userID user.ID) (bool, error)
	// ListByProperty returns reviews newest first with the total count.
	ListByProperty(ctx context.Context, propertyID properties.ID, limit, offset int) ([]*Review, int, error)
	Ratings(ctx context.Context, propertyID properties.ID) ([]int, error)
}

type SubmitParams struct {
	ID         ID
	PropertyID properties.ID
	UserID     user.ID
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if strings.TrimSpace(string(params.PropertyID)) == "" {
		return nil, ErrPropertyRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrAuthorRequired
	}
	comment := strings.TrimSpace(params.Comment)
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, ErrCommentTooLong
	}
	created := params.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	review := &Review{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		UserID:     params.UserID,
		Rating:     params.Rating,
		Comment:    comment,
		CreatedAt:  created.UTC(),
	}
	review.Record(Submitted{
		Base:       events.Base{Name: EventSubmitted, Aggregate: string(review.ID), Time: review.CreatedAt},
		PropertyID: string(review.PropertyID),
		UserID:     string(review.UserID),
		Rating:     review.Rating,
	})
	return review, nil
}

// Summary is the derived rating aggregate of a property.
type Summary struct {
	Average float64
	Count   int
}

// Summarize computes the mean rounded to one decimal place.
func Summarize(ratings []int) Summary {
	if len(ratings) == 0 {
		return Summary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return Summary{Average: math.Round(mean*10) / 10, Count: len(ratings)}
}
