package reviews

import (
	"context"
	"time"

	"homestay/internal/app/uow"
	domainproperties "homestay/internal/domain/properties"
	domainreviews "homestay/internal/domain/reviews"
)

// refreshRating derives the aggregate from every stored review and saves the
// property when it differs. The caller holds the property lock.
func refreshRating(ctx context.Context, unit uow.UnitOfWork, id domainproperties.ID, now time.Time) (*domainproperties.Property, bool, error) {
	property, err := unit.Properties().ByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	ratings, err := unit.Reviews().Ratings(ctx, id)
	if err != nil {
		return nil, false, err
	}
	summary := domainreviews.Summarize(ratings)
	if summary.Average == property.AverageRating && summary.Count == property.NumReviews {
		return property, false, nil
	}
	if err := property.SetRating(summary.Average, summary.Count, now); err != nil {
		return nil, false, err
	}
	if err := unit.Properties().Save(ctx, property); err != nil {
		return nil, false, err
	}
	return property, true, nil
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
