package memory

import (
	"context"
	"slices"
	"strings"

	domainuser "homestay/internal/domain/user"
)

type userRepo struct {
	unit *Unit
}

func (r *userRepo) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	s := r.unit.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	email = domainuser.NormalizeEmail(email)
	s := r.unit.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (r *userRepo) Save(ctx context.Context, u *domainuser.User) error {
	return r.unit.write(func() (func(), error) {
		s := r.unit.store
		for _, other := range s.users {
			if other.ID != u.ID && other.Email == u.Email {
				return nil, domainuser.ErrEmailAlreadyUsed
			}
		}
		prev, exists := s.users[u.ID]
		cp := *u
		s.users[u.ID] = &cp
		return func() {
			if exists {
				s.users[u.ID] = prev
				return
			}
			delete(s.users, u.ID)
		}, nil
	})
}

func (r *userRepo) List(ctx context.Context, params domainuser.ListParams) ([]*domainuser.User, int, error) {
	s := r.unit.store
	s.mu.RLock()
	query := strings.ToLower(strings.TrimSpace(params.Query))
	var matched []*domainuser.User
	for _, u := range s.users {
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(u.Email), query) && !strings.Contains(strings.ToLower(u.Name), query) {
			continue
		}
		cp := *u
		matched = append(matched, &cp)
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *domainuser.User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareStrings(string(a.ID), string(b.ID))
	})
	total := len(matched)
	start := min(max(params.Offset, 0), total)
	end := total
	if params.Limit > 0 {
		end = min(start+params.Limit, total)
	}
	return matched[start:end], total, nil
}
