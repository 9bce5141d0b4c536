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
	domainproperties "homestay/internal/domain/properties"
	"homestay/internal/domain/shared/daterange"
	domainuser "homestay/internal/domain/user"
)

const createBookingKey = "booking.create"

type CreateBookingCommand struct {
	BookingID       string          `validate:"required"`
	PropertyID      string          `validate:"required"`
	TravelerID      string          `validate:"required"`
	Role            domainuser.Role `validate:"required"`
	StartDate       time.Time       `validate:"required"`
	EndDate         time.Time       `validate:"required"`
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) IdempotencyScope() string { return c.TravelerID }

func (c CreateBookingCommand) ResultPrototype() any { return &dto.Booking{} }

func (c CreateBookingCommand) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleTraveler}
}

func (c CreateBookingCommand) ActorRole() domainuser.Role { return c.Role }

// CreateBookingHandler checks availability and inserts a pending booking in
// one unit of work. The property lock makes the overlap check and the insert
// atomic with respect to other requests for the same property.
type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Metrics    policies.BookingMetrics
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*dto.Booking, error) {
	dr, err := daterange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}

	unit, ctx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer managed.Close()

	propertyID := domainproperties.ID(cmd.PropertyID)
	if err := unit.Properties().Lock(ctx, propertyID); err != nil {
		return nil, err
	}
	// Read under the lock so the rate matches the serialized view.
	property, err := unit.Properties().ByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	clashes, err := unit.Bookings().Overlapping(ctx, propertyID, dr)
	if err != nil {
		return nil, err
	}
	if len(clashes) > 0 {
		metricsOrNoop(h.Metrics).BookingRejected("dates_unavailable")
		return nil, domainbooking.ErrDatesUnavailable
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:          domainbooking.ID(cmd.BookingID),
		TravelerID:  domainuser.ID(cmd.TravelerID),
		PropertyID:  property.ID,
		HostID:      property.HostID,
		Range:       dr,
		NightlyRate: property.BaseRate,
		Now:         clock(h.Now),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return nil, err
	}
	recipient := emailOf(ctx, unit, booking.TravelerID)

	if err := managed.Commit(); err != nil {
		return nil, err
	}

	metricsOrNoop(h.Metrics).BookingCreated()
	result := dto.MapBooking(booking)
	notifyAfterCommit(ctx, h.Notifier, h.Logger, recipient, policies.TemplateBookingCreated, result)
	return &result, nil
}

var _ commands.Handler[CreateBookingCommand, *dto.Booking] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
var _ middleware.RoleRestricted = CreateBookingCommand{}
