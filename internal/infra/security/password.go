package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"homestay/internal/domain/shared/fault"
)

// bcrypt only looks at the first 72 bytes; longer secrets are refused rather
// than silently truncated.
const maxPasswordBytes = 72

var (
	ErrPasswordTooLong  = fault.New(fault.InvalidInput, "security: password must be at most 72 bytes")
	ErrPasswordMismatch = fault.New(fault.Unauthorized, "security: password does not match")
)

// BcryptHasher stores account passwords. Cost below bcrypt.MinCost falls back
// to bcrypt.DefaultCost; tests pass MinCost to stay fast.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	cost := h.Cost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fault.Wrap(fault.Internal, "security: hash password", err)
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
