package middleware

import (
	"context"
	"slices"

	"homestay/internal/app/commands"
	"homestay/internal/app/queries"
	"homestay/internal/domain/shared/fault"
	"homestay/internal/domain/user"
)

var ErrRoleNotPermitted = fault.New(fault.Forbidden, "middleware: role not permitted for this operation")

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// RoleRestricted messages declare which actor roles may send them.
type RoleRestricted interface {
	RequiredRoles() []user.Role
	ActorRole() user.Role
}

// RoleAuthorizer rejects RoleRestricted messages whose actor role is not listed.
// Resource level checks (ownership, booking parties) stay in the handlers.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(_ context.Context, message any) error {
	restricted, ok := message.(RoleRestricted)
	if !ok {
		return nil
	}
	roles := restricted.RequiredRoles()
	if len(roles) == 0 || slices.Contains(roles, restricted.ActorRole()) {
		return nil
	}
	return ErrRoleNotPermitted
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
