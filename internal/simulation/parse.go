package simulation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// maxInstantMs bounds float inputs before conversion to int64.
const maxInstantMs = 1e15

// ParseInstant accepts RFC3339, datetime-local style layouts (read as UTC) or a
// unix-millisecond integer.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTime)
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		if !validInstant(t) {
			return time.Time{}, fmt.Errorf("%w: %d is out of range", ErrInvalidTime, ms)
		}
		return t, nil
	}
	// JSON numbers may arrive in float form, e.g. 1.7206128e12.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxInstantMs {
			return time.Time{}, fmt.Errorf("%w: %s is out of range", ErrInvalidTime, s)
		}
		t := time.UnixMilli(int64(math.Round(f))).UTC()
		if !validInstant(t) {
			return time.Time{}, fmt.Errorf("%w: %s is out of range", ErrInvalidTime, s)
		}
		return t, nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidTime, s)
}

func validInstant(t time.Time) bool {
	y := t.Year()
	return !t.IsZero() && y >= 1970 && y <= 9999
}

// Instant is a jump target decoded from JSON as either a string accepted by
// ParseInstant or a unix-millisecond number. It holds the raw text; parsing
// happens when the clock applies it.
type Instant string

func (i *Instant) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*i = Instant(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("%w: expected string or number", ErrInvalidTime)
	}
	*i = Instant(n.String())
	return nil
}
