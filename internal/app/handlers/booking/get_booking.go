package booking

import (
	"context"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainuser "homestay/internal/domain/user"
)

const getBookingKey = "booking.get"

type GetBookingQuery struct {
	BookingID string          `validate:"required"`
	ActorID   string          `validate:"required"`
	Role      domainuser.Role `validate:"required"`
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	defer managed.Close()

	booking, err := unit.Bookings().ByID(ctx, domainbooking.ID(q.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if !booking.VisibleTo(domainuser.ID(q.ActorID), q.Role) {
		return dto.Booking{}, domainbooking.ErrNotVisible
	}
	return dto.MapBooking(booking), nil
}

var _ queries.Handler[GetBookingQuery, dto.Booking] = (*GetBookingHandler)(nil)
