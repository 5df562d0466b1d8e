package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/computerstore/storefront-api/internal/shared/auth"
)

func TestNewUser_HashesPassword(t *testing.T) {
	HashCost = bcrypt.MinCost
	user, err := NewUser("  alice ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, auth.RoleCustomer, user.Role)
	assert.True(t, user.CheckPassword("secret1"))
	assert.False(t, user.CheckPassword("secret2"))
	assert.False(t, user.CheckPassword(""))
}

func TestUser_Invariants(t *testing.T) {
	HashCost = bcrypt.MinCost
	_, err := NewUser("", "secret1")
	assert.ErrorIs(t, err, ErrEmptyUsername)
	_, err = NewUser("bob", "abc")
	assert.ErrorIs(t, err, ErrWeakPassword)

	user, err := NewUser("bob", "secret1")
	require.NoError(t, err)
	assert.ErrorIs(t, user.UpdateProfile("bob-at-example", "", "", ""), ErrInvalidEmail)
	assert.Equal(t, "bob", user.DisplayName())

	user.Role = "owner"
	assert.ErrorIs(t, user.Validate(), ErrInvalidRole)
}
