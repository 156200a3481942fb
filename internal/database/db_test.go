package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBuildConnectionString(t *testing.T) {
	s := buildConnectionString("/tmp/x.db", ProfileCache)
	assert.Contains(t, s, "/tmp/x.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, s, "synchronous(OFF)")

	s = buildConnectionString("file:test?mode=memory", ProfileStandard)
	assert.Contains(t, s, "file:test?mode=memory&_pragma=journal_mode(WAL)")
	assert.Contains(t, s, "synchronous(NORMAL)")
}

func TestMigrate_HistorySchema(t *testing.T) {
	db := openTestDB(t, NameHistory, ProfileStandard)
	require.NoError(t, db.Migrate())
	// second run is a no-op
	require.NoError(t, db.Migrate())

	var count int
	err := db.Conn().QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('daily_prices','instruments')`,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMigrate_UnknownName(t *testing.T) {
	db := openTestDB(t, "nope", ProfileStandard)
	assert.Error(t, db.Migrate())
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := openTestDB(t, NameCache, ProfileCache)
	require.NoError(t, db.Migrate())

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO report_cache (cache_key, kind, payload, expires_at, created_at) VALUES ('k','analytics',x'00',1,1)`)
		require.NoError(t, err)
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM report_cache`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestHealthAndMaintenance(t *testing.T) {
	db := openTestDB(t, NameHistory, ProfileStandard)
	require.NoError(t, db.Migrate())

	ctx := context.Background()
	assert.NoError(t, db.QuickCheck(ctx))
	assert.NoError(t, db.HealthCheck(ctx))
	assert.NoError(t, db.WALCheckpoint(""))
	assert.Error(t, db.WALCheckpoint("BOGUS"))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageSize, int64(0))
}
