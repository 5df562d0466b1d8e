package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computerstore/storefront-api/internal/domains/users/domain"
	"github.com/computerstore/storefront-api/internal/domains/users/ports"
	"github.com/computerstore/storefront-api/internal/shared/auth"
)

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	tok, err := issuer.Issue(&domain.User{ID: 42, Username: "alice", Role: auth.RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)

	claims, err := issuer.Verify(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerify_RejectsExpiredAndForeignTokens(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := issued
	issuer, err := NewIssuer("test-secret", time.Hour, WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	tok, err := issuer.Issue(&domain.User{ID: 7, Role: auth.RoleCustomer})
	require.NoError(t, err)

	clock = issued.Add(2 * time.Hour)
	_, err = issuer.Verify(tok.Value)
	assert.ErrorIs(t, err, ports.ErrInvalidToken)

	other, err := NewIssuer("other-secret", time.Hour)
	require.NoError(t, err)
	fresh, err := other.Issue(&domain.User{ID: 7, Role: auth.RoleCustomer})
	require.NoError(t, err)
	_, err = issuer.Verify(fresh.Value)
	assert.ErrorIs(t, err, ports.ErrInvalidToken)

	_, err = issuer.Verify("")
	assert.ErrorIs(t, err, ports.ErrInvalidToken)
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer("", time.Hour)
	require.Error(t, err)
}
