package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"homestay/internal/app/handlers/support"
	"homestay/internal/app/uow"
	domainauth "homestay/internal/domain/auth"
	"homestay/internal/domain/shared/fault"
	domainuser "homestay/internal/domain/user"
)

var (
	ErrInvalidCredentials = fault.New(fault.Unauthorized, "auth: invalid credentials")
	ErrInvalidToken       = fault.New(fault.Unauthorized, "auth: invalid or expired token")
	ErrPasswordTooShort   = fault.New(fault.InvalidInput, "auth: password must be at least 8 characters")
	ErrRoleNotSelectable  = fault.New(fault.InvalidInput, "auth: role cannot be chosen at registration")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenClaims is what an access token asserts about its bearer.
type TokenClaims struct {
	SessionID domainauth.SessionID
	UserID    domainuser.ID
	Role      domainuser.Role
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies access tokens. Verify fails for expired or
// tampered tokens.
type TokenIssuer interface {
	Issue(claims TokenClaims) (string, error)
	Verify(token string) (TokenClaims, error)
}

type Service struct {
	UoWFactory uow.UoWFactory
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenIssuer
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type RegisterParams struct {
	Email    string
	Name     string
	Password string
	Role     string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User      *domainuser.User
	Token     string
	ExpiresAt time.Time
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	role, err := domainuser.ParseRole(params.Role)
	if err != nil {
		return nil, err
	}
	if role == domainuser.RoleAdmin {
		return nil, ErrRoleNotSelectable
	}
	if err := s.validatePassword(params.Password); err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", user.ID, "email", user.Email, "role", user.Role)
	}
	return result, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", user.ID)
	}
	return result, nil
}

// Logout revokes the session behind token. Unknown or expired tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return nil
	}
	if err := s.Sessions.Delete(ctx, claims.SessionID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("session terminated", "user_id", claims.UserID)
	}
	return nil
}

// ResolveToken authenticates a bearer token against a live session.
func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	session, err := s.Sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}
	user, err := s.userByID(ctx, session.UserID)
	if err != nil {
		_ = s.Sessions.Delete(ctx, session.ID)
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &ResolveResult{User: user, Session: session}, nil
}

// EnsureAdmin creates the administrator account when no user holds email.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return nil
	}
	if _, err := s.userByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return err
	}
	hash, err := s.Passwords.Hash(password)
	if err != nil {
		return err
	}
	admin, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         domainuser.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if err := s.saveUser(ctx, admin); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("admin account created", "user_id", admin.ID, "email", admin.Email)
	}
	return nil
}

func (s *Service) issueSession(ctx context.Context, user *domainuser.User) (*AuthResult, error) {
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		ID:     domainauth.SessionID(uuid.NewString()),
		UserID: user.ID,
		Role:   user.Role,
		TTL:    s.sessionTTL(),
		Now:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	token, err := s.Tokens.Issue(TokenClaims{
		SessionID: session.ID,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *Service) saveUser(ctx context.Context, user *domainuser.User) error {
	unit, ctx, managed, err := support.BeginUnit(ctx, s.UoWFactory, uow.TxOptions{})
	if err != nil {
		return err
	}
	defer managed.Close()
	if err := unit.Users().Save(ctx, user); err != nil {
		return err
	}
	return managed.Commit()
}

func (s *Service) userByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, s.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer managed.Close()
	return unit.Users().ByEmail(ctx, email)
}

func (s *Service) userByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, s.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer managed.Close()
	return unit.Users().ByID(ctx, id)
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 24 * time.Hour
}

func (s *Service) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.UoWFactory == nil:
		return errors.New("auth: unit of work factory required")
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token issuer required")
	default:
		return nil
	}
}
