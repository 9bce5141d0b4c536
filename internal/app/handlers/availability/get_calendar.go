package availability

import (
	"context"
	"time"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainavailability "homestay/internal/domain/availability"
	domainproperties "homestay/internal/domain/properties"
	"homestay/internal/domain/shared/daterange"
)

const (
	getCalendarKey = "availability.calendar"
	defaultWindow  = 30
)

// GetCalendarQuery asks for the booked nights of a property in [From, To).
// Zero bounds default to a window starting today.
type GetCalendarQuery struct {
	PropertyID string `validate:"required"`
	From       time.Time
	To         time.Time
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	from, to := q.From, q.To
	if from.IsZero() {
		now := time.Now
		if h.Now != nil {
			now = h.Now
		}
		from = now()
	}
	if to.IsZero() {
		to = daterange.Day(from).AddDate(0, 0, defaultWindow)
	}
	window, err := daterange.New(from, to)
	if err != nil {
		return dto.Calendar{}, err
	}

	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	defer managed.Close()

	id := domainproperties.ID(q.PropertyID)
	if _, err := unit.Properties().ByID(ctx, id); err != nil {
		return dto.Calendar{}, err
	}
	bookings, err := unit.Bookings().Overlapping(ctx, id, window)
	if err != nil {
		return dto.Calendar{}, err
	}
	calendar, err := domainavailability.Build(id, window, bookings)
	if err != nil {
		return dto.Calendar{}, err
	}
	return dto.MapCalendar(calendar), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
