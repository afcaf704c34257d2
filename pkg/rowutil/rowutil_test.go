package rowutil

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{name: "float64", input: 90.5, want: 90.5},
		{name: "int64", input: int64(42), want: 42},
		{name: "int32", input: int32(7), want: 7},
		{name: "numeric string", input: "88.25", want: 88.25},
		{name: "bytes", input: []byte("12.5"), want: 12.5},
		{name: "pg numeric", input: pgtype.Numeric{Int: big.NewInt(9050), Exp: -2, Valid: true}, want: 90.5},
		{name: "nil", input: nil, want: 0},
		{name: "garbage string", input: "n/a", want: 0},
		{name: "invalid pg numeric", input: pgtype.Numeric{}, want: 0},
		{name: "bool unsupported", input: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Float(tt.input))
		})
	}
}

func TestOptionalFloat_DistinguishesAbsentFromZero(t *testing.T) {
	assert.Nil(t, OptionalFloat(nil))
	assert.Nil(t, OptionalFloat(""))

	zero := OptionalFloat(0.0)
	require.NotNil(t, zero)
	assert.Equal(t, 0.0, *zero)
}

func TestInt64(t *testing.T) {
	assert.Equal(t, int64(5), Int64(int64(5)))
	assert.Equal(t, int64(5), Int64(int32(5)))
	assert.Equal(t, int64(12), Int64("12"))
	assert.Equal(t, int64(3), Int64(3.9))
	assert.Equal(t, int64(0), Int64(nil))
	assert.Nil(t, OptionalInt64("abc"))
}

func TestString(t *testing.T) {
	assert.Equal(t, "draft", String("draft"))
	assert.Equal(t, "draft", String([]byte("draft")))
	assert.Equal(t, "", String(nil))
	assert.Equal(t, "42", String(int64(42)))
	assert.Equal(t, "monthly", StringOr(nil, "monthly"))
	assert.Equal(t, "weekly", StringOr("weekly", "monthly"))
}

func TestOptionalTime(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	got := OptionalTime(ts)
	require.NotNil(t, got)
	assert.True(t, ts.Equal(*got))

	got = OptionalTime("2026-03-14")
	require.NotNil(t, got)
	assert.Equal(t, 14, got.Day())

	got = OptionalTime("2026-03-14 09:30:00")
	require.NotNil(t, got)
	assert.Equal(t, 9, got.Hour())

	got = OptionalTime(pgtype.Date{Time: ts, Valid: true})
	require.NotNil(t, got)

	assert.Nil(t, OptionalTime(nil))
	assert.Nil(t, OptionalTime(time.Time{}))
	assert.Nil(t, OptionalTime("not a date"))
	assert.Nil(t, OptionalTime(pgtype.Timestamptz{}))
	assert.True(t, Time(nil).IsZero())
}
