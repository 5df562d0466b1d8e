//go:build integration

// Package pgtest starts a throwaway PostgreSQL for integration tests.
package pgtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/computerstore/storefront-api/internal/platform/migrations"
	platformpostgres "github.com/computerstore/storefront-api/internal/platform/postgres"
)

// Start runs a migrated postgres container and registers its cleanup on t.
func Start(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn, platformpostgres.PoolOptions{MaxOpenConns: 10})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	})
	return db
}

// SeedUser inserts a bare user row and returns its id. Rows referencing users
// (carts, orders) need one.
func SeedUser(t *testing.T, db *gorm.DB, username string) int64 {
	t.Helper()
	var id int64
	err := db.Raw(
		`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, 'x', 'customer') RETURNING id`,
		username, username+"@example.com",
	).Scan(&id).Error
	require.NoError(t, err)
	return id
}
