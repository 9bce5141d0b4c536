package memory

import (
	"context"
	"slices"

	domainproperties "homestay/internal/domain/properties"
	domainreviews "homestay/internal/domain/reviews"
	"homestay/internal/domain/shared/events"
	domainuser "homestay/internal/domain/user"
)

type reviewRepo struct {
	unit *Unit
}

func (r *reviewRepo) Create(ctx context.Context, review *domainreviews.Review) error {
	return r.unit.write(func() (func(), error) {
		s := r.unit.store
		for _, existing := range s.reviews {
			if existing.PropertyID == review.PropertyID && existing.UserID == review.UserID {
				return nil, domainreviews.ErrAlreadyReviewed
			}
		}
		cp := *review
		cp.EventRecorder = events.EventRecorder{}
		s.reviews[review.ID] = &cp
		return func() { delete(s.reviews, review.ID) }, nil
	})
}

func (r *reviewRepo) Exists(ctx context.Context, propertyID domainproperties.ID, userID domainuser.ID) (bool, error) {
	s := r.unit.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, existing := range s.reviews {
		if existing.PropertyID == propertyID && existing.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *reviewRepo) ListByProperty(ctx context.Context, propertyID domainproperties.ID, limit, offset int) ([]*domainreviews.Review, int, error) {
	all := r.byProperty(propertyID)
	slices.SortFunc(all, func(a, b *domainreviews.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareStrings(string(b.ID), string(a.ID))
	})
	total := len(all)
	start := min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}
	return all[start:end], total, nil
}

func (r *reviewRepo) Ratings(ctx context.Context, propertyID domainproperties.ID) ([]int, error) {
	all := r.byProperty(propertyID)
	out := make([]int, 0, len(all))
	for _, review := range all {
		out = append(out, review.Rating)
	}
	return out, nil
}

func (r *reviewRepo) byProperty(propertyID domainproperties.ID) []*domainreviews.Review {
	s := r.unit.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domainreviews.Review
	for _, review := range s.reviews {
		if review.PropertyID == propertyID {
			cp := *review
			out = append(out, &cp)
		}
	}
	return out
}
