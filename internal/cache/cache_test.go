package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/database"
)

type sample struct {
	Name   string             `msgpack:"name"`
	Values []float64          `msgpack:"values"`
	Wts    map[string]float64 `msgpack:"wts"`
}

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    database.NameCache,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())
	return NewRepository(db.Conn())
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("AAA:1", "SPY")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint("AAA:1", "SPY"))
	assert.NotEqual(t, a, Fingerprint("AAA:1SPY"))
	assert.NotEqual(t, a, Fingerprint("SPY", "AAA:1"))
}

func TestRepository_SetGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := sample{Name: "x", Values: []float64{0.1, -2.5}, Wts: map[string]float64{"AAA": 0.6, "BBB": 0.4}}
	require.NoError(t, repo.Set(ctx, KindAnalytics, "k1", in, time.Hour))

	var out sample
	ok, err := repo.Get(ctx, KindAnalytics, "k1", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)

	// same key under another kind is a different entry
	ok, err = repo.Get(ctx, KindOptimize, "k1", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)
	var out sample
	ok, err := repo.Get(context.Background(), KindAnalytics, "nope", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_ExpiredEntries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }

	require.NoError(t, repo.Set(ctx, KindAnalytics, "short", sample{Name: "a"}, time.Minute))
	require.NoError(t, repo.Set(ctx, KindFrontier, "short", sample{Name: "b"}, time.Minute))
	require.NoError(t, repo.Set(ctx, KindAnalytics, "long", sample{Name: "c"}, time.Hour))

	repo.now = func() time.Time { return base.Add(10 * time.Minute) }

	var out sample
	ok, err := repo.Get(ctx, KindAnalytics, "short", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	counts, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{KindAnalytics: 1, KindFrontier: 1}, counts)

	ok, err = repo.Get(ctx, KindAnalytics, "long", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", out.Name)
}

func TestCleanupJob(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now()
	repo.now = func() time.Time { return base.Add(-2 * time.Hour) }
	require.NoError(t, repo.Set(ctx, KindAnalytics, "old", sample{}, time.Minute))
	repo.now = time.Now

	job := NewCleanupJob(repo, zerolog.Nop())
	assert.Equal(t, "report_cache_cleanup", job.Name())
	require.NoError(t, job.Run())

	counts, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
