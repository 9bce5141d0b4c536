package users

import (
	"context"
	"testing"
	"time"

	"homestay/internal/app/uow"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/storage/memory"
)

func TestListUsersFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	unit, _ := store.Factory().Begin(ctx, uow.TxOptions{})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, u := range []struct {
		id, email string
		role      domainuser.Role
	}{
		{"u-1", "ana@example.com", domainuser.RoleHost},
		{"u-2", "bo@example.com", domainuser.RoleTraveler},
		{"u-3", "cy@example.com", domainuser.RoleTraveler},
	} {
		usr, err := domainuser.NewUser(domainuser.CreateParams{
			ID: domainuser.ID(u.id), Email: u.email, Name: u.id, PasswordHash: "x", Role: u.role,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("user: %v", err)
		}
		_ = unit.Users().Save(ctx, usr)
	}
	_ = unit.Commit(ctx)

	h := &ListUsersHandler{UoWFactory: store.Factory()}
	travelers, err := h.Handle(ctx, ListUsersQuery{Role: domainuser.RoleAdmin, ByRole: "traveler", Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if travelers.Total != 2 || len(travelers.Items) != 1 || travelers.Items[0].ID != "u-3" {
		t.Fatalf("expected newest traveler first, got %+v", travelers)
	}
	found, _ := h.Handle(ctx, ListUsersQuery{Role: domainuser.RoleAdmin, Search: "ANA@"})
	if found.Total != 1 || found.Items[0].Role != "host" {
		t.Fatalf("unexpected search result %+v", found)
	}
}
