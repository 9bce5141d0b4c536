package reviews

import (
	"context"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainproperties "homestay/internal/domain/properties"
)

const (
	listReviewsKey = "reviews.list"

	defaultReviewLimit = 20
	maxReviewLimit     = 100
)

type ListPropertyReviewsQuery struct {
	PropertyID string `validate:"required"`
	Limit      int    `validate:"min=0"`
	Offset     int    `validate:"min=0"`
}

func (q ListPropertyReviewsQuery) Key() string { return listReviewsKey }

type ListPropertyReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListPropertyReviewsHandler) Handle(ctx context.Context, q ListPropertyReviewsQuery) (dto.ReviewCollection, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultReviewLimit
	}
	limit = min(limit, maxReviewLimit)
	offset := max(q.Offset, 0)

	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	defer managed.Close()

	id := domainproperties.ID(q.PropertyID)
	if _, err := unit.Properties().ByID(ctx, id); err != nil {
		return dto.ReviewCollection{}, err
	}
	items, total, err := unit.Reviews().ListByProperty(ctx, id, limit, offset)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	out := dto.ReviewCollection{Items: make([]dto.Review, 0, len(items)), Total: total, Limit: limit, Offset: offset}
	for _, r := range items {
		out.Items = append(out.Items, dto.MapReview(r))
	}
	return out, nil
}

var _ queries.Handler[ListPropertyReviewsQuery, dto.ReviewCollection] = (*ListPropertyReviewsHandler)(nil)
