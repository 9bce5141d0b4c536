package users

import (
	"context"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainuser "homestay/internal/domain/user"
)

const (
	listUsersKey = "users.list"

	defaultLimit = 50
	maxLimit     = 200
)

type ListUsersQuery struct {
	Role   domainuser.Role `validate:"required"`
	Search string          `validate:"max=200"`
	ByRole string          `validate:"omitempty,oneof=traveler host admin"`
	Limit  int             `validate:"min=0"`
	Offset int             `validate:"min=0"`
}

func (q ListUsersQuery) Key() string { return listUsersKey }

func (q ListUsersQuery) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleAdmin}
}

func (q ListUsersQuery) ActorRole() domainuser.Role { return q.Role }

type ListUsersHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListUsersHandler) Handle(ctx context.Context, q ListUsersQuery) (dto.UserList, error) {
	params := domainuser.ListParams{Query: q.Search, Limit: q.Limit, Offset: max(q.Offset, 0)}
	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}
	params.Limit = min(params.Limit, maxLimit)
	if q.ByRole != "" {
		role, err := domainuser.ParseRole(q.ByRole)
		if err != nil {
			return dto.UserList{}, err
		}
		params.Role = role
	}

	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UserList{}, err
	}
	defer managed.Close()

	items, total, err := unit.Users().List(ctx, params)
	if err != nil {
		return dto.UserList{}, err
	}
	out := dto.UserList{Items: make([]dto.UserProfile, 0, len(items)), Total: total}
	for _, u := range items {
		out.Items = append(out.Items, dto.MapUserProfile(u))
	}
	return out, nil
}

var _ queries.Handler[ListUsersQuery, dto.UserList] = (*ListUsersHandler)(nil)
