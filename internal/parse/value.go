package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Detail bags decode from JSON, so numbers arrive as float64 from request
// bodies, as json.Number from the database, and sometimes as strings. The
// helpers below accept all three and fall back to the zero value.

// Float coerces a detail value to float64.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err == nil {
			return f
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

// Int coerces a detail value to int, truncating fractions.
func Int(v any) int {
	switch s := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0
		}
		return n
	case json.Number:
		if n, err := s.Int64(); err == nil {
			return int(n)
		}
	}
	return int(Float(v))
}

// Bool coerces a detail value to bool. Only true and "true" are true.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	}
	return false
}

// String renders a detail value as text; nil stays empty.
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	}
	return fmt.Sprint(v)
}

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)(?::([0-5]\d))?$`)

// Clock parses a wall-clock time of the form HH:mm (seconds are accepted
// and dropped) into minutes since midnight.
func Clock(v any) (int, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("clock value %v is not a string", v)
	}
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid clock value %q, expected HH:mm", s)
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return h*60 + mins, nil
}

// TimestampLayout matches the timestamps stored inside detail bags.
const TimestampLayout = "2006-01-02T15:04:05.000-0700"

// Timestamp parses a detail-bag timestamp.
func Timestamp(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, fmt.Errorf("timestamp value %v is missing", v)
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatTimestamp renders t the way Timestamp expects it.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
