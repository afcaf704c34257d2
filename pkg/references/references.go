// Package references allocates human-readable evaluation numbers such as SPE-2026-0042.
package references

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ekaya-inc/supplier-performance/pkg/database"
	"github.com/ekaya-inc/supplier-performance/pkg/rowutil"
)

// DateLayout is the calendar-day key used by the allocators.
const DateLayout = "2006-01-02"

// Allocator hands out a strictly increasing sequence per calendar day, starting at 1.
// Concurrent callers never receive the same value for the same day.
type Allocator interface {
	Next(ctx context.Context, day time.Time) (int64, error)
}

// Format renders an evaluation number: prefix, year, and the sequence zero-padded to four digits.
// Sequences above 9999 are rendered in full.
func Format(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const nextSequenceSQL = `
	INSERT INTO supplier_evaluation_sequences (sequence_date, last_value)
	VALUES ($1, 1)
	ON CONFLICT (sequence_date)
	DO UPDATE SET last_value = supplier_evaluation_sequences.last_value + 1
	RETURNING last_value`

type postgresAllocator struct {
	store database.Store
}

// NewPostgresAllocator returns an Allocator backed by the supplier_evaluation_sequences table.
// Run inside the evaluation insert transaction, a rolled-back create gives its number back.
func NewPostgresAllocator(store database.Store) Allocator {
	return &postgresAllocator{store: store}
}

var _ Allocator = (*postgresAllocator)(nil)

func (a *postgresAllocator) Next(ctx context.Context, day time.Time) (int64, error) {
	row, err := a.store.FetchOne(ctx, nextSequenceSQL, Day(day))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate evaluation sequence: %w", err)
	}
	if row == nil {
		return 0, fmt.Errorf("failed to allocate evaluation sequence: no row returned")
	}
	return rowutil.Int64(row["last_value"]), nil
}

// sequenceTTL keeps a day's counter around long enough to outlive clock skew between instances.
const sequenceTTL = 48 * time.Hour

type redisAllocator struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisAllocator returns an Allocator that INCRs one key per day under keyPrefix.
func NewRedisAllocator(rdb *redis.Client, keyPrefix string) Allocator {
	return &redisAllocator{rdb: rdb, prefix: keyPrefix}
}

var _ Allocator = (*redisAllocator)(nil)

func (a *redisAllocator) Next(ctx context.Context, day time.Time) (int64, error) {
	key := fmt.Sprintf("%s:seq:%s", a.prefix, Day(day).Format(DateLayout))

	pipe := a.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to allocate evaluation sequence: %w", err)
	}
	return incr.Val(), nil
}
