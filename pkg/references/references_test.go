package references

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/supplier-performance/pkg/database"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		prefix string
		year   int
		seq    int64
		want   string
	}{
		{"SPE", 2026, 1, "SPE-2026-0001"},
		{"SPE", 2026, 42, "SPE-2026-0042"},
		{"SPE", 2026, 9999, "SPE-2026-9999"},
		{"SPE", 2026, 12345, "SPE-2026-12345"},
		{"EVAL", 2027, 7, "EVAL-2027-0007"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.prefix, tt.year, tt.seq))
	}
}

func TestFormat_MatchesReferencePattern(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^SPE-\d{4}-\d{4}$`), Format("SPE", 2026, 3))
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	got := Day(time.Date(2026, 10, 19, 23, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), got)
}

type stubStore struct {
	database.Store
	query string
	args  []any
	row   database.Row
	err   error
}

func (s *stubStore) FetchOne(_ context.Context, query string, args ...any) (database.Row, error) {
	s.query, s.args = query, args
	return s.row, s.err
}

func TestPostgresAllocator_Next(t *testing.T) {
	store := &stubStore{row: database.Row{"last_value": int64(5)}}
	alloc := NewPostgresAllocator(store)

	seq, err := alloc.Next(context.Background(), time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, int64(5), seq)
	assert.Contains(t, store.query, "ON CONFLICT (sequence_date)")
	assert.Equal(t, []any{time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)}, store.args)
}

func TestPostgresAllocator_Errors(t *testing.T) {
	_, err := NewPostgresAllocator(&stubStore{err: errors.New("db down")}).Next(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	_, err = NewPostgresAllocator(&stubStore{}).Next(context.Background(), time.Now())
	require.Error(t, err)
}
