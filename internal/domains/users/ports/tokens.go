package ports

import (
	"errors"
	"time"

	"github.com/computerstore/storefront-api/internal/domains/users/domain"
)

// ErrInvalidToken covers malformed, expired, and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Token is a signed bearer credential.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Claims are the verified contents of a token.
type Claims struct {
	UserID int64
	Role   string
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (Token, error)
	Verify(token string) (Claims, error)
}
