// Package rowutil converts loosely-typed storage values into Go values.
// Rows fetched as map[string]any may carry numbers as pgtype.Numeric, text,
// or native ints depending on the column and driver, so every accessor
// accepts any of them and falls back to a zero value instead of failing.
package rowutil

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// OptionalFloat returns nil when v is absent, NULL, or not numeric.
func OptionalFloat(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return &x
	case float32:
		f := float64(x)
		return &f
	case int:
		f := float64(x)
		return &f
	case int16:
		f := float64(x)
		return &f
	case int32:
		f := float64(x)
		return &f
	case int64:
		f := float64(x)
		return &f
	case *float64:
		if x == nil {
			return nil
		}
		f := *x
		return &f
	case decimal.Decimal:
		f := x.InexactFloat64()
		return &f
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f8, err := x.Float64Value()
		if err != nil || !f8.Valid {
			return nil
		}
		return &f8.Float64
	case pgtype.Float8:
		if !x.Valid {
			return nil
		}
		return &x.Float64
	case pgtype.Int8:
		if !x.Valid {
			return nil
		}
		f := float64(x.Int64)
		return &f
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil
		}
		return &f
	case []byte:
		return OptionalFloat(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// Float returns v as a float64, or 0 when it cannot be read.
func Float(v any) float64 {
	if f := OptionalFloat(v); f != nil {
		return *f
	}
	return 0
}

// OptionalInt64 returns nil when v is absent, NULL, or not an integer.
// Fractional values are truncated.
func OptionalInt64(v any) *int64 {
	switch x := v.(type) {
	case nil:
		return nil
	case int64:
		return &x
	case int:
		i := int64(x)
		return &i
	case int32:
		i := int64(x)
		return &i
	case int16:
		i := int64(x)
		return &i
	case *int64:
		if x == nil {
			return nil
		}
		i := *x
		return &i
	case pgtype.Int8:
		if !x.Valid {
			return nil
		}
		return &x.Int64
	case pgtype.Int4:
		if !x.Valid {
			return nil
		}
		i := int64(x.Int32)
		return &i
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &i
		}
	}
	if f := OptionalFloat(v); f != nil {
		i := int64(*f)
		return &i
	}
	return nil
}

// Int64 returns v as an int64, or 0 when it cannot be read.
func Int64(v any) int64 {
	if i := OptionalInt64(v); i != nil {
		return *i
	}
	return 0
}

// String returns v as text. NULL and unsupported values become "".
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case []byte:
		return string(x)
	case pgtype.Text:
		if !x.Valid {
			return ""
		}
		return x.String
	case int64, int32, int, float64, float32:
		if f := OptionalFloat(x); f != nil {
			return strconv.FormatFloat(*f, 'f', -1, 64)
		}
	}
	return ""
}

// StringOr returns String(v), or def when that is empty.
func StringOr(v any, def string) string {
	if s := String(v); s != "" {
		return s
	}
	return def
}

// OptionalTime returns nil when v is absent, NULL, or not a recognizable timestamp.
func OptionalTime(v any) *time.Time {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return &x
	case *time.Time:
		if x == nil || x.IsZero() {
			return nil
		}
		t := *x
		return &t
	case pgtype.Timestamptz:
		if !x.Valid {
			return nil
		}
		return &x.Time
	case pgtype.Timestamp:
		if !x.Valid {
			return nil
		}
		return &x.Time
	case pgtype.Date:
		if !x.Valid {
			return nil
		}
		return &x.Time
	case []byte:
		return OptionalTime(string(x))
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}

// Time returns v as a time.Time, or the zero time when it cannot be read.
func Time(v any) time.Time {
	if t := OptionalTime(v); t != nil {
		return *t
	}
	return time.Time{}
}
