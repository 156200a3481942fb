// Package cache stores computed reports in SQLite with an expiration timestamp.
// Payloads are msgpack-encoded so reports round-trip without JSON float noise.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Report kinds.
const (
	KindAnalytics = "analytics"
	KindOptimize  = "optimize"
	KindFullData  = "optimization_full"
	KindFrontier  = "frontier"
)

// Store is the read/write surface the services depend on.
type Store interface {
	Get(ctx context.Context, kind, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, kind, key string, v interface{}, ttl time.Duration) error
}

// Repository provides cache operations on the report_cache table.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new report cache repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Fingerprint hashes the request parts into a stable cache key.
func Fingerprint(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(h[:])
}

func rowKey(kind, key string) string {
	return kind + ":" + key
}

// Set stores v with expiration = now + ttl.
func (r *Repository) Set(ctx context.Context, kind, key string, v interface{}, ttl time.Duration) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s report: %w", kind, err)
	}

	now := r.now()
	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO report_cache (cache_key, kind, payload, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rowKey(kind, key), kind, payload, now.Add(ttl).Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store %s report: %w", kind, err)
	}
	return nil
}

// Get decodes a fresh entry into dst. It reports false when the key is
// missing or expired.
func (r *Repository) Get(ctx context.Context, kind, key string, dst interface{}) (bool, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM report_cache WHERE cache_key = ? AND expires_at > ?`,
		rowKey(kind, key), r.now().Unix(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s report: %w", kind, err)
	}

	if err := msgpack.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s report: %w", kind, err)
	}
	return true, nil
}

// DeleteExpired removes expired entries and returns the count per kind.
func (r *Repository) DeleteExpired(ctx context.Context) (map[string]int64, error) {
	now := r.now().Unix()

	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM report_cache WHERE expires_at <= ? GROUP BY kind`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count expired reports: %w", err)
	}
	counts := make(map[string]int64)
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan expired count: %w", err)
		}
		counts[kind] = n
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(counts) == 0 {
		return counts, nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM report_cache WHERE expires_at <= ?`, now); err != nil {
		return nil, fmt.Errorf("failed to delete expired reports: %w", err)
	}
	return counts, nil
}
