//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computerstore/storefront-api/internal/domains/reviews/domain"
	"github.com/computerstore/storefront-api/internal/domains/reviews/ports"
	"github.com/computerstore/storefront-api/internal/platform/postgres/pgtest"
)

func TestRepository_ReviewLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := pgtest.SeedUser(t, db, "hana")
	var productID int64
	require.NoError(t, db.Raw(`INSERT INTO products (name, price, stock) VALUES ('Case', 60, 3) RETURNING id`).Scan(&productID).Error)

	review, err := domain.NewReview(userID, productID, 4, "roomy")
	require.NoError(t, err)
	created, err := repo.Create(ctx, review)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.False(t, created.ReviewDate.IsZero())

	created.Rating = 2
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)

	list, err := repo.ListByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "roomy", list[0].Comment)

	orphan, err := domain.NewReview(userID, productID+100, 5, "")
	require.NoError(t, err)
	_, err = repo.Create(ctx, orphan)
	assert.ErrorIs(t, err, ports.ErrProductNotFound)

	var bad int
	err = db.Raw(`INSERT INTO reviews (user_id, product_id, rating) VALUES (?, ?, 6) RETURNING id`, userID, productID).Scan(&bad).Error
	assert.Error(t, err)

	require.NoError(t, db.Exec(`DELETE FROM products WHERE id = ?`, productID).Error)
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ports.ErrNotFound)
}
