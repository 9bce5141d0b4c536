package user

import (
	"context"
	"strings"
	"time"

	"homestay/internal/domain/shared/fault"
)

var (
	ErrIDRequired          = fault.New(fault.InvalidInput, "user: id is required")
	ErrEmailRequired       = fault.New(fault.InvalidInput, "user: email is required")
	ErrPasswordHashMissing = fault.New(fault.InvalidInput, "user: password hash is required")
	ErrNameRequired        = fault.New(fault.InvalidInput, "user: name is required")
	ErrInvalidRole         = fault.New(fault.InvalidInput, "user: invalid role")
	ErrEmailAlreadyUsed    = fault.New(fault.Conflict, "user: email already used")
	ErrNotFound            = fault.New(fault.NotFound, "user: not found")
)

type ID string

type Role string

const (
	RoleTraveler Role = "traveler"
	RoleHost     Role = "host"
	RoleAdmin    Role = "admin"
)

// User is a marketplace account. Bookings and reviews reference it by ID.
type User struct {
	ID           ID
	Email        string
	Name         string
	AvatarURL    string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ListParams struct {
	Query  string
	Role   Role
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	List(ctx context.Context, params ListParams) ([]*User, int, error)
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	AvatarURL    string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	role, err := ParseRole(string(params.Role))
	if err != nil {
		return nil, err
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:           ID(id),
		Email:        email,
		Name:         name,
		AvatarURL:    strings.TrimSpace(params.AvatarURL),
		PasswordHash: params.PasswordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) HasRole(role Role) bool {
	return u.Role == role
}

func (u *User) UpdateProfile(name, avatarURL string, now time.Time) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrNameRequired
	}
	u.Name = trimmed
	u.AvatarURL = strings.TrimSpace(avatarURL)
	u.touch(now)
	return nil
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

// ParseRole normalizes raw into a known role. Empty input means traveler.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "traveler", "guest":
		return RoleTraveler, nil
	case "host":
		return RoleHost, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
