package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/computerstore/storefront-api/internal/domains/users/domain"
	"github.com/computerstore/storefront-api/internal/domains/users/ports"
)

func init() {
	domain.HashCost = bcrypt.MinCost
}

func TestRepository_SaveAssignsIDsAndEnforcesUniqueUsername(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	alice, err := domain.NewUser("alice", "secret1")
	require.NoError(t, err)
	saved, err := repo.Save(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)

	dup, err := domain.NewUser("ALICE", "secret2")
	require.NoError(t, err)
	_, err = repo.Save(ctx, dup)
	assert.ErrorIs(t, err, ports.ErrUsernameTaken)

	byName, err := repo.GetByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byName.ID)
}

func TestRepository_ListByIDsSkipsUnknown(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	for _, name := range []string{"alice", "bob"} {
		u, err := domain.NewUser(name, "secret1")
		require.NoError(t, err)
		_, err = repo.Save(ctx, u)
		require.NoError(t, err)
	}

	users, err := repo.ListByIDs(ctx, []int64{2, 99, 2})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DeleteFreesUsername(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	gina, err := domain.NewUser("gina", "secret1")
	require.NoError(t, err)
	saved, err := repo.Save(ctx, gina)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID), ports.ErrNotFound)
	_, err = repo.GetByUsername(ctx, "gina")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	again, err := domain.NewUser("Gina", "secret2")
	require.NoError(t, err)
	_, err = repo.Save(ctx, again)
	require.NoError(t, err)
}
