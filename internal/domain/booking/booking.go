package booking

import (
	"context"
	"strings"
	"time"

	"homestay/internal/domain/properties"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/fault"
	"homestay/internal/domain/shared/money"
	"homestay/internal/domain/user"
)

var (
	ErrNotFound          = fault.New(fault.NotFound, "booking: not found")
	ErrIDRequired        = fault.New(fault.InvalidInput, "booking: id is required")
	ErrTravelerRequired  = fault.New(fault.InvalidInput, "booking: traveler is required")
	ErrPropertyRequired  = fault.New(fault.InvalidInput, "booking: property is required")
	ErrRateRequired      = fault.New(fault.InvalidInput, "booking: nightly rate must be positive")
	ErrInvalidStatus     = fault.New(fault.InvalidInput, "booking: unknown status")
	ErrDatesUnavailable  = fault.New(fault.Conflict, "booking: dates unavailable")
	ErrInvalidTransition = fault.New(fault.Conflict, "booking: invalid state transition")
	ErrNotAllowed        = fault.New(fault.Forbidden, "booking: not allowed to change this booking")
	ErrNotVisible        = fault.New(fault.Forbidden, "booking: not allowed to view this booking")
	ErrConcurrentUpdate  = fault.New(fault.Conflict, "booking: concurrent update detected")
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Booking struct {
	ID         ID
	TravelerID user.ID
	PropertyID properties.ID
	HostID     user.ID
	Range      daterange.DateRange
	Nights     int
	TotalPrice money.Money
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64

	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	// Overlapping returns non-cancelled bookings of the property intersecting dr.
	Overlapping(ctx context.Context, propertyID properties.ID, dr daterange.DateRange) ([]*Booking, error)
	ListByTraveler(ctx context.Context, travelerID user.ID) ([]*Booking, error)
	// ListByHost returns the host's bookings; an empty status means all.
	ListByHost(ctx context.Context, hostID user.ID, status Status) ([]*Booking, error)
	HasCompletedStay(ctx context.Context, travelerID user.ID, propertyID properties.ID) (bool, error)
}

type CreateParams struct {
	ID          ID
	TravelerID  user.ID
	PropertyID  properties.ID
	HostID      user.ID
	Range       daterange.DateRange
	NightlyRate money.Money
	Now         time.Time
}

// NewBooking creates a pending booking priced at nights times the nightly rate.
func NewBooking(params CreateParams) (*Booking, error) {
	switch {
	case strings.TrimSpace(string(params.ID)) == "":
		return nil, ErrIDRequired
	case strings.TrimSpace(string(params.TravelerID)) == "":
		return nil, ErrTravelerRequired
	case strings.TrimSpace(string(params.PropertyID)) == "":
		return nil, ErrPropertyRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	total, err := Quote(params.Range, params.NightlyRate)
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	b := &Booking{
		ID:         params.ID,
		TravelerID: params.TravelerID,
		PropertyID: params.PropertyID,
		HostID:     params.HostID,
		Range:      params.Range,
		Nights:     params.Range.Nights(),
		TotalPrice: total,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(Requested{
		Base:       events.Base{Name: EventRequested, Aggregate: string(b.ID), Time: now},
		PropertyID: string(b.PropertyID),
		TravelerID: string(b.TravelerID),
		HostID:     string(b.HostID),
		StartDate:  b.Range.Start,
		EndDate:    b.Range.End,
		Total:      b.TotalPrice,
	})
	return b, nil
}

// Quote prices a stay; seasonal rates are not applied.
func Quote(dr daterange.DateRange, nightly money.Money) (money.Money, error) {
	if nightly.Amount <= 0 || nightly.Currency == "" {
		return money.Money{}, ErrRateRequired
	}
	return nightly.Multiply(int64(dr.Nights())), nil
}

// Active bookings block their dates.
func (b *Booking) Active() bool {
	return b.Status != StatusCancelled
}

func (b *Booking) Approve(actor user.ID, now time.Time) error {
	return b.apply(actor, TransitionApprove, now)
}

func (b *Booking) Complete(actor user.ID, now time.Time) error {
	return b.apply(actor, TransitionComplete, now)
}

func (b *Booking) Cancel(actor user.ID, now time.Time) error {
	return b.apply(actor, TransitionCancel, now)
}

// Apply runs transition t on behalf of actor. Authorization is decided before
// the state precondition, so strangers get ErrNotAllowed whatever the status.
func (b *Booking) Apply(actor user.ID, t Transition, now time.Time) error {
	return b.apply(actor, t, now)
}

func (b *Booking) apply(actor user.ID, t Transition, now time.Time) error {
	if !CanTransition(actor, b, t) {
		return ErrNotAllowed
	}
	target, ok := nextStatus(b.Status, t)
	if !ok {
		return ErrInvalidTransition
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	from := b.Status
	b.Status = target
	b.UpdatedAt = now
	b.Record(StatusChanged{
		Base:   events.Base{Name: eventNameFor(target), Aggregate: string(b.ID), Time: now},
		From:   from,
		To:     target,
		Actor:  string(actor),
		HostID: string(b.HostID),
	})
	return nil
}

// VisibleTo reports whether a user may read the booking.
func (b *Booking) VisibleTo(actor user.ID, role user.Role) bool {
	return role == user.RoleAdmin || actor == b.TravelerID || actor == b.HostID
}
