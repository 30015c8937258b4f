// Package coerce holds the explicit parse-and-coerce step for loosely typed
// request fields. Every function documents how it treats a missing value
// versus a malformed one, so callers never rely on a silent zero fallback.
package coerce

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Int converts a decoded JSON value into an int. It accepts JSON numbers,
// json.Number, numeric strings and Go integer types. The second return is
// false when the value is absent (nil) or not parseable as an integer.
func Int(raw any) (int, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(n), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return n, true
	default:
		return 0, false
	}
}

// Int64 is Int for 64-bit values.
func Int64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	default:
		return 0, false
	}
}

// IntInRange parses raw and clamps into [min, max]. Absent or malformed
// values resolve to def.
func IntInRange(raw any, min, max, def int) int {
	n, ok := Int(raw)
	if !ok {
		return def
	}
	return Clamp(n, min, max)
}

// Int64NonNeg parses raw as a non-negative byte count. Absent, malformed or
// negative values resolve to 0.
func Int64NonNeg(raw any) int64 {
	n, ok := Int64(raw)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// QueryInt parses a query string parameter, falling back to def when the
// parameter is empty or not an integer.
func QueryInt(raw string, def int) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Clamp bounds n into [min, max].
func Clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
