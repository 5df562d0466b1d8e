// Package token signs and verifies HS256 bearer tokens.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/computerstore/storefront-api/internal/domains/users/domain"
	"github.com/computerstore/storefront-api/internal/domains/users/ports"
)

const issuerName = "storefront-api"

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer implements ports.TokenIssuer with a shared HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(secret string, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	i := &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i, nil
}

func (i *Issuer) Issue(user *domain.User) (ports.Token, error) {
	if user == nil || user.ID == 0 {
		return ports.Token{}, errors.New("cannot issue token for unsaved user")
	}
	now := i.now()
	expires := now.Add(i.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return ports.Token{}, err
	}
	return ports.Token{Value: signed, ExpiresAt: expires}, nil
}

func (i *Issuer) Verify(raw string) (ports.Claims, error) {
	if raw == "" {
		return ports.Claims{}, ports.ErrInvalidToken
	}
	parsed := &claims{}
	_, err := jwt.ParseWithClaims(raw, parsed, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return ports.Claims{}, fmt.Errorf("%w: %w", ports.ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || id <= 0 {
		return ports.Claims{}, fmt.Errorf("%w: bad subject", ports.ErrInvalidToken)
	}
	return ports.Claims{UserID: id, Role: parsed.Role}, nil
}

var _ ports.TokenIssuer = (*Issuer)(nil)
