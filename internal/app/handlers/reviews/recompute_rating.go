package reviews

import (
	"context"
	"log/slog"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainproperties "homestay/internal/domain/properties"
	domainuser "homestay/internal/domain/user"
)

const recomputeRatingKey = "reviews.recompute_rating"

// RecomputeRatingCommand rebuilds a property's rating from its reviews.
// Running it again without new reviews changes nothing.
type RecomputeRatingCommand struct {
	PropertyID string          `validate:"required"`
	Role       domainuser.Role `validate:"required"`
}

func (c RecomputeRatingCommand) Key() string { return recomputeRatingKey }

func (c RecomputeRatingCommand) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleAdmin}
}

func (c RecomputeRatingCommand) ActorRole() domainuser.Role { return c.Role }

type RecomputeRatingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *RecomputeRatingHandler) Handle(ctx context.Context, cmd RecomputeRatingCommand) (*dto.RatingSummary, error) {
	unit, ctx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer managed.Close()

	id := domainproperties.ID(cmd.PropertyID)
	if _, err := unit.Properties().ByID(ctx, id); err != nil {
		return nil, err
	}
	if err := unit.Properties().Lock(ctx, id); err != nil {
		return nil, err
	}
	property, changed, err := refreshRating(ctx, unit, id, clock(h.Now))
	if err != nil {
		return nil, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, property); err != nil {
		return nil, err
	}
	if err := managed.Commit(); err != nil {
		return nil, err
	}
	if changed && h.Logger != nil {
		h.Logger.Info("property rating corrected", "property_id", id, "average_rating", property.AverageRating, "num_reviews", property.NumReviews)
	}
	return &dto.RatingSummary{
		PropertyID:    string(property.ID),
		AverageRating: property.AverageRating,
		NumReviews:    property.NumReviews,
	}, nil
}

var _ commands.Handler[RecomputeRatingCommand, *dto.RatingSummary] = (*RecomputeRatingHandler)(nil)
var _ middleware.RoleRestricted = RecomputeRatingCommand{}
