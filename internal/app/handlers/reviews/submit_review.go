package reviews

import (
	"context"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/outbox"
	"homestay/internal/app/policies"
	"homestay/internal/app/uow"
	domainproperties "homestay/internal/domain/properties"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
)

const submitReviewKey = "reviews.submit"

type SubmitReviewCommand struct {
	ReviewID   string `validate:"required"`
	PropertyID string `validate:"required"`
	UserID     string `validate:"required"`
	Rating     int    `validate:"min=1,max=5"`
	Comment    string `validate:"max=2000"`
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

// SubmitReviewHandler stores a review from a guest with a completed stay and
// refreshes the property's rating in the same unit of work.
type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Metrics    policies.ReviewMetrics
	Now        func() time.Time
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*dto.Review, error) {
	now := clock(h.Now)
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         domainreviews.ID(cmd.ReviewID),
		PropertyID: domainproperties.ID(cmd.PropertyID),
		UserID:     domainuser.ID(cmd.UserID),
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	unit, ctx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer managed.Close()

	if _, err := unit.Properties().ByID(ctx, review.PropertyID); err != nil {
		return nil, err
	}
	stayed, err := unit.Bookings().HasCompletedStay(ctx, review.UserID, review.PropertyID)
	if err != nil {
		return nil, err
	}
	if !stayed {
		return nil, domainreviews.ErrNotEligible
	}
	exists, err := unit.Reviews().Exists(ctx, review.PropertyID, review.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domainreviews.ErrAlreadyReviewed
	}

	if err := unit.Properties().Lock(ctx, review.PropertyID); err != nil {
		return nil, err
	}
	if err := unit.Reviews().Create(ctx, review); err != nil {
		return nil, err
	}
	property, _, err := refreshRating(ctx, unit, review.PropertyID, now)
	if err != nil {
		return nil, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, review, property); err != nil {
		return nil, err
	}
	if err := managed.Commit(); err != nil {
		return nil, err
	}

	if h.Metrics != nil {
		h.Metrics.ReviewSubmitted(review.Rating)
	}
	result := dto.MapReview(review)
	return &result, nil
}

var _ commands.Handler[SubmitReviewCommand, *dto.Review] = (*SubmitReviewHandler)(nil)
