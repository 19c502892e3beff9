package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openMigrationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestRegisteredMigrations(t *testing.T) {
	t.Parallel()
	ms := GetMigrations()
	require.NotEmpty(t, ms)

	// Version order, complete up/down pairs.
	last := 0
	for _, m := range ms {
		assert.Greater(t, m.Version, last)
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpScript)
		assert.NotEmpty(t, m.DownScript)
		last = m.Version
	}

	first := GetMigrationByVersion(1)
	require.NotNil(t, first)
	assert.Equal(t, "create_bans", first.Name)
	assert.Contains(t, first.UpScript, "CREATE TABLE IF NOT EXISTS bans")
	assert.Nil(t, GetMigrationByVersion(999999))
}

func TestRunMigrations(t *testing.T) {
	t.Parallel()
	db := openMigrationTestDB(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, db))
	assert.True(t, db.Migrator().HasTable("bans"))

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Contains(t, applied, 1)

	// Re-running is a no-op, not a failure.
	require.NoError(t, RunMigrations(ctx, db))
	again, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, applied, again)
}

func TestRollbackMigration(t *testing.T) {
	t.Parallel()
	db := openMigrationTestDB(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, db))
	require.True(t, db.Migrator().HasTable("bans"))

	require.NoError(t, RollbackMigration(ctx, db, 1))
	assert.False(t, db.Migrator().HasTable("bans"))

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.NotContains(t, applied, 1)

	// Rolling back an unapplied migration fails loudly.
	assert.Error(t, RollbackMigration(ctx, db, 1))
}
