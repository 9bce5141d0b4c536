package memory

import (
	"context"
	"slices"

	domainproperties "homestay/internal/domain/properties"
	"homestay/internal/domain/shared/events"
	domainuser "homestay/internal/domain/user"
)

type propertyRepo struct {
	unit *Unit
}

func (r *propertyRepo) ByID(ctx context.Context, id domainproperties.ID) (*domainproperties.Property, error) {
	s := r.unit.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, domainproperties.ErrNotFound
	}
	return cloneProperty(p), nil
}

func (r *propertyRepo) Lock(ctx context.Context, id domainproperties.ID) error {
	return r.unit.lock(ctx, id)
}

// Save inserts or replaces the property when its version matches the stored one.
func (r *propertyRepo) Save(ctx context.Context, p *domainproperties.Property) error {
	return r.unit.write(func() (func(), error) {
		s := r.unit.store
		prev, exists := s.properties[p.ID]
		if exists && prev.Version != p.Version {
			return nil, domainproperties.ErrConcurrentUpdate
		}
		if !exists && p.Version != 0 {
			return nil, domainproperties.ErrConcurrentUpdate
		}
		p.Version++
		s.properties[p.ID] = cloneProperty(p)
		return func() {
			if exists {
				s.properties[p.ID] = prev
				return
			}
			delete(s.properties, p.ID)
		}, nil
	})
}

func (r *propertyRepo) Delete(ctx context.Context, id domainproperties.ID) error {
	return r.unit.write(func() (func(), error) {
		s := r.unit.store
		prev, ok := s.properties[id]
		if !ok {
			return nil, domainproperties.ErrNotFound
		}
		delete(s.properties, id)
		return func() { s.properties[id] = prev }, nil
	})
}

func (r *propertyRepo) Search(ctx context.Context, q domainproperties.Query) (domainproperties.SearchResult, error) {
	s := r.unit.store
	s.mu.RLock()
	matched := make([]*domainproperties.Property, 0, len(s.properties))
	for _, p := range s.properties {
		if q.Matches(p) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, q.Compare)
	result := domainproperties.SearchResult{Total: len(matched)}
	start := min(q.Offset(), len(matched))
	end := min(start+q.Limit, len(matched))
	for _, p := range matched[start:end] {
		result.Items = append(result.Items, cloneProperty(p))
	}
	return result, nil
}

func (r *propertyRepo) ListByHost(ctx context.Context, host domainuser.ID) ([]*domainproperties.Property, error) {
	s := r.unit.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domainproperties.Property
	for _, p := range s.properties {
		if p.HostID == host {
			out = append(out, cloneProperty(p))
		}
	}
	slices.SortFunc(out, func(a, b *domainproperties.Property) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareStrings(string(a.ID), string(b.ID))
	})
	return out, nil
}

func cloneProperty(p *domainproperties.Property) *domainproperties.Property {
	cp := *p
	cp.EventRecorder = events.EventRecorder{}
	cp.Amenities = slices.Clone(p.Amenities)
	cp.RoomTypes = slices.Clone(p.RoomTypes)
	cp.SeasonalRates = slices.Clone(p.SeasonalRates)
	cp.Images = slices.Clone(p.Images)
	return &cp
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
