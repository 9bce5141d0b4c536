package memory

import (
	"context"
	"slices"

	domainbooking "homestay/internal/domain/booking"
	domainproperties "homestay/internal/domain/properties"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
	domainuser "homestay/internal/domain/user"
)

type bookingRepo struct {
	unit *Unit
}

func (r *bookingRepo) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	s := r.unit.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *bookingRepo) Save(ctx context.Context, b *domainbooking.Booking) error {
	return r.unit.write(func() (func(), error) {
		s := r.unit.store
		prev, exists := s.bookings[b.ID]
		if (exists && prev.Version != b.Version) || (!exists && b.Version != 0) {
			return nil, domainbooking.ErrConcurrentUpdate
		}
		b.Version++
		s.bookings[b.ID] = cloneBooking(b)
		if exists {
			return func() { s.bookings[b.ID] = prev }, nil
		}
		s.bookingSeq[b.ID] = s.nextSeq()
		return func() {
			delete(s.bookings, b.ID)
			delete(s.bookingSeq, b.ID)
		}, nil
	})
}

func (r *bookingRepo) Overlapping(ctx context.Context, propertyID domainproperties.ID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool {
		return b.PropertyID == propertyID && b.Active() && b.Range.Overlaps(dr)
	}), nil
}

func (r *bookingRepo) ListByTraveler(ctx context.Context, travelerID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool {
		return b.TravelerID == travelerID
	}), nil
}

func (r *bookingRepo) ListByHost(ctx context.Context, hostID domainuser.ID, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool {
		return b.HostID == hostID && (status == "" || b.Status == status)
	}), nil
}

func (r *bookingRepo) HasCompletedStay(ctx context.Context, travelerID domainuser.ID, propertyID domainproperties.ID) (bool, error) {
	found := r.filter(func(b *domainbooking.Booking) bool {
		return b.TravelerID == travelerID && b.PropertyID == propertyID && b.Status == domainbooking.StatusCompleted
	})
	return len(found) > 0, nil
}

// filter returns matching bookings in insertion order.
func (r *bookingRepo) filter(keep func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	s := r.unit.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	slices.SortFunc(out, func(a, b *domainbooking.Booking) int {
		return int(s.bookingSeq[a.ID] - s.bookingSeq[b.ID])
	})
	return out
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}
