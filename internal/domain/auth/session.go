package auth

import (
	"context"
	"strings"
	"time"

	"homestay/internal/domain/shared/fault"
	"homestay/internal/domain/user"
)

var (
	ErrSessionIDRequired = fault.New(fault.InvalidInput, "auth: session id is required")
	ErrUserRequired      = fault.New(fault.InvalidInput, "auth: user is required")
	ErrTTLInvalid        = fault.New(fault.InvalidInput, "auth: ttl must be positive")
	ErrSessionNotFound   = fault.New(fault.NotFound, "auth: session not found")
)

// SessionID identifies a live login. Access tokens carry it as their jti claim.
type SessionID string

type Session struct {
	ID        SessionID
	UserID    user.ID
	Role      user.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	ID     SessionID
	UserID user.ID
	Role   user.Role
	TTL    time.Duration
	Now    time.Time
}

func NewSession(params CreateSessionParams) (*Session, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrSessionIDRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if params.TTL <= 0 {
		return nil, ErrTTLInvalid
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Session{
		ID:        SessionID(id),
		UserID:    params.UserID,
		Role:      params.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(params.TTL),
	}, nil
}

func (s *Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

// TTL returns the remaining lifetime at the given instant.
func (s *Session) TTL(at time.Time) time.Duration {
	return s.ExpiresAt.Sub(at.UTC())
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id SessionID) (*Session, error)
	Delete(ctx context.Context, id SessionID) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
