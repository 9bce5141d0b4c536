package user

import (
	"errors"
	"testing"
	"time"
)

func TestNewUserNormalizesInput(t *testing.T) {
	u, err := NewUser(CreateParams{
		ID:           "u-1",
		Email:        "  Ann@Example.COM ",
		Name:         " Ann ",
		PasswordHash: "hash",
		Role:         "HOST",
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("x", 3600)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "ann@example.com" || u.Name != "Ann" || u.Role != RoleHost {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamps")
	}
}

func TestNewUserDefaultsToTraveler(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u-2", Email: "b@example.com", Name: "B", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !u.HasRole(RoleTraveler) {
		t.Fatalf("expected traveler role, got %s", u.Role)
	}
}

func TestNewUserValidation(t *testing.T) {
	cases := []struct {
		name   string
		params CreateParams
		want   error
	}{
		{"missing id", CreateParams{Email: "a@b.c", Name: "A", PasswordHash: "h"}, ErrIDRequired},
		{"missing email", CreateParams{ID: "1", Name: "A", PasswordHash: "h"}, ErrEmailRequired},
		{"missing hash", CreateParams{ID: "1", Email: "a@b.c", Name: "A"}, ErrPasswordHashMissing},
		{"missing name", CreateParams{ID: "1", Email: "a@b.c", PasswordHash: "h"}, ErrNameRequired},
		{"bad role", CreateParams{ID: "1", Email: "a@b.c", Name: "A", PasswordHash: "h", Role: "owner"}, ErrInvalidRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewUser(tc.params); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
