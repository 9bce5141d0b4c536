package booking

import (
	"context"
	"errors"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainproperties "homestay/internal/domain/properties"
	domainuser "homestay/internal/domain/user"
)

const (
	travelerBookingsKey = "booking.list_traveler"
	hostBookingsKey     = "booking.list_host"
)

type ListTravelerBookingsQuery struct {
	TravelerID string `validate:"required"`
}

func (q ListTravelerBookingsQuery) Key() string { return travelerBookingsKey }

type ListTravelerBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListTravelerBookingsHandler) Handle(ctx context.Context, q ListTravelerBookingsQuery) (dto.TravelerBookingCollection, error) {
	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.TravelerBookingCollection{}, err
	}
	defer managed.Close()

	bookings, err := unit.Bookings().ListByTraveler(ctx, domainuser.ID(q.TravelerID))
	if err != nil {
		return dto.TravelerBookingCollection{}, err
	}
	props := propertyCache{unit: unit, items: map[domainproperties.ID]*domainproperties.Property{}}
	out := dto.TravelerBookingCollection{Items: make([]dto.TravelerBookingSummary, 0, len(bookings))}
	for _, b := range bookings {
		p, err := props.get(ctx, b.PropertyID)
		if err != nil {
			return dto.TravelerBookingCollection{}, err
		}
		out.Items = append(out.Items, dto.TravelerBookingSummary{
			Booking:  dto.MapBooking(b),
			Property: dto.MapBookingProperty(b.PropertyID, p),
		})
	}
	return out, nil
}

// ListHostBookingsQuery lists bookings on the host's properties; an empty
// Status returns every state.
type ListHostBookingsQuery struct {
	HostID string          `validate:"required"`
	Role   domainuser.Role `validate:"required"`
	Status string          `validate:"omitempty,oneof=pending confirmed completed cancelled"`
}

func (q ListHostBookingsQuery) Key() string { return hostBookingsKey }

func (q ListHostBookingsQuery) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleHost, domainuser.RoleAdmin}
}

func (q ListHostBookingsQuery) ActorRole() domainuser.Role { return q.Role }

type ListHostBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.HostBookingCollection, error) {
	var status domainbooking.Status
	if q.Status != "" {
		parsed, err := domainbooking.ParseStatus(q.Status)
		if err != nil {
			return dto.HostBookingCollection{}, err
		}
		status = parsed
	}

	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostBookingCollection{}, err
	}
	defer managed.Close()

	bookings, err := unit.Bookings().ListByHost(ctx, domainuser.ID(q.HostID), status)
	if err != nil {
		return dto.HostBookingCollection{}, err
	}
	props := propertyCache{unit: unit, items: map[domainproperties.ID]*domainproperties.Property{}}
	travelers := map[domainuser.ID]*domainuser.User{}
	out := dto.HostBookingCollection{Items: make([]dto.HostBookingSummary, 0, len(bookings))}
	for _, b := range bookings {
		p, err := props.get(ctx, b.PropertyID)
		if err != nil {
			return dto.HostBookingCollection{}, err
		}
		traveler, seen := travelers[b.TravelerID]
		if !seen {
			traveler, err = unit.Users().ByID(ctx, b.TravelerID)
			if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
				return dto.HostBookingCollection{}, err
			}
			travelers[b.TravelerID] = traveler
		}
		out.Items = append(out.Items, dto.HostBookingSummary{
			Booking:  dto.MapBooking(b),
			Property: dto.MapBookingProperty(b.PropertyID, p),
			Traveler: dto.MapBookingTraveler(b.TravelerID, traveler),
		})
	}
	return out, nil
}

// propertyCache loads each referenced property once. Deleted properties
// yield a nil snapshot source.
type propertyCache struct {
	unit  uow.UnitOfWork
	items map[domainproperties.ID]*domainproperties.Property
}

func (c propertyCache) get(ctx context.Context, id domainproperties.ID) (*domainproperties.Property, error) {
	if p, ok := c.items[id]; ok {
		return p, nil
	}
	p, err := c.unit.Properties().ByID(ctx, id)
	if err != nil && !errors.Is(err, domainproperties.ErrNotFound) {
		return nil, err
	}
	c.items[id] = p
	return p, nil
}

var _ queries.Handler[ListTravelerBookingsQuery, dto.TravelerBookingCollection] = (*ListTravelerBookingsHandler)(nil)
var _ queries.Handler[ListHostBookingsQuery, dto.HostBookingCollection] = (*ListHostBookingsHandler)(nil)
