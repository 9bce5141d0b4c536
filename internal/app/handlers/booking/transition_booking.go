package booking

import (
	"context"
	"log/slog"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/policies"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainuser "homestay/internal/domain/user"
)

const transitionBookingKey = "booking.transition"

// TransitionBookingCommand approves, completes or cancels a booking. Which
// party may do what is decided by the booking itself.
type TransitionBookingCommand struct {
	BookingID  string                   `validate:"required"`
	ActorID    string                   `validate:"required"`
	Role       domainuser.Role          `validate:"required"`
	Transition domainbooking.Transition `validate:"required,oneof=approve complete cancel"`
}

func (c TransitionBookingCommand) Key() string { return transitionBookingKey }

func (c TransitionBookingCommand) RequiredRoles() []domainuser.Role {
	if c.Transition == domainbooking.TransitionCancel {
		return []domainuser.Role{domainuser.RoleTraveler, domainuser.RoleHost}
	}
	return []domainuser.Role{domainuser.RoleHost}
}

func (c TransitionBookingCommand) ActorRole() domainuser.Role { return c.Role }

type TransitionBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Metrics    policies.BookingMetrics
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *TransitionBookingHandler) Handle(ctx context.Context, cmd TransitionBookingCommand) (*dto.Booking, error) {
	unit, ctx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer managed.Close()

	booking, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	actor := domainuser.ID(cmd.ActorID)
	if err := booking.Apply(actor, cmd.Transition, clock(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return nil, err
	}

	// The other party hears about the change.
	counterpart := booking.TravelerID
	if actor == booking.TravelerID {
		counterpart = booking.HostID
	}
	recipient := emailOf(ctx, unit, counterpart)

	if err := managed.Commit(); err != nil {
		return nil, err
	}

	metricsOrNoop(h.Metrics).BookingTransitioned(string(cmd.Transition))
	result := dto.MapBooking(booking)
	notifyAfterCommit(ctx, h.Notifier, h.Logger, recipient, templateFor(booking.Status), result)
	return &result, nil
}

var _ commands.Handler[TransitionBookingCommand, *dto.Booking] = (*TransitionBookingHandler)(nil)
var _ middleware.RoleRestricted = TransitionBookingCommand{}
