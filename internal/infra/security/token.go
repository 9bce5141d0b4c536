package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"homestay/internal/app/services/auth"
	domainauth "homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
)

var ErrSecretRequired = errors.New("security: jwt secret required")

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 access tokens. The session id travels as the jti
// claim and the user id as the subject.
type JWTIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTIssuer(secret, issuer string) (*JWTIssuer, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	return &JWTIssuer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

func (j *JWTIssuer) Issue(c auth.TokenClaims) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(c.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        string(c.SessionID),
			Subject:   string(c.UserID),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	})
	return token.SignedString(j.secret)
}

func (j *JWTIssuer) Verify(raw string) (auth.TokenClaims, error) {
	parsed := &claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	token, err := jwt.ParseWithClaims(raw, parsed, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return auth.TokenClaims{}, fmt.Errorf("security: %w", err)
	}
	if !token.Valid || parsed.ID == "" || parsed.Subject == "" {
		return auth.TokenClaims{}, errors.New("security: invalid token")
	}
	return auth.TokenClaims{
		SessionID: domainauth.SessionID(parsed.ID),
		UserID:    domainuser.ID(parsed.Subject),
		Role:      domainuser.Role(parsed.Role),
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}

var _ auth.TokenIssuer = (*JWTIssuer)(nil)
