package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computerstore/storefront-api/internal/domains/reviews/domain"
	"github.com/computerstore/storefront-api/internal/domains/reviews/ports"
)

func TestRepository_ListByProductNewestFirst(t *testing.T) {
	repo := NewRepository()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	ctx := context.Background()

	for _, productID := range []int64{7, 8, 7} {
		review, err := domain.NewReview(1, productID, 4, "")
		require.NoError(t, err)
		_, err = repo.Create(ctx, review)
		require.NoError(t, err)
	}

	list, err := repo.ListByProduct(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].ID)
	assert.Equal(t, int64(1), list[1].ID)

	empty, err := repo.ListByProduct(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	review, err := domain.NewReview(1, 7, 2, "meh")
	require.NoError(t, err)
	created, err := repo.Create(ctx, review)
	require.NoError(t, err)

	created.Rating = 5
	created.Comment = "grew on me"
	created.UserID = 99
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, int64(1), updated.UserID)

	created.Rating = 6
	_, err = repo.Update(ctx, created)
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ports.ErrNotFound)
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
