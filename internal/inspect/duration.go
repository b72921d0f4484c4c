package inspect

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// durationRe matches compact durations: a non-negative integer followed by a
// single unit letter. Compound durations ("1h30m") are deliberately not
// supported. time.ParseDuration is not used here — it accepts compound forms
// and rejects "1d", both contrary to this contract.
var durationRe = regexp.MustCompile(`^([0-9]+)([smhd])$`)

// unitSeconds maps a (lowercased) unit letter to its length in seconds.
var unitSeconds = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
}

// ParseDuration parses a compact duration string like "24h", "30m", or "1d"
// into a time.Duration. Units are s, m, h, d (case-insensitive). It fails
// with an invalid-duration Error on empty input, unrecognised units,
// non-numeric or negative magnitudes, and any surrounding garbage.
func ParseDuration(s string) (time.Duration, error) {
	m := durationRe.FindStringSubmatch(lowerASCII(s))
	if m == nil {
		return 0, invalidDuration(s)
	}

	value, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Magnitude too large for int64.
		return 0, invalidDuration(s)
	}

	// Scaling to seconds and then to nanoseconds must not wrap int64 — a
	// silent wrap would turn a huge max_age into a negative threshold.
	unit := unitSeconds[m[2]]
	if value > math.MaxInt64/unit {
		return 0, invalidDuration(s)
	}
	seconds := value * unit
	if seconds > math.MaxInt64/int64(time.Second) {
		return 0, invalidDuration(s)
	}

	return time.Duration(seconds) * time.Second, nil
}

// invalidDuration builds the caller-input error for a malformed duration string.
func invalidDuration(s string) *Error {
	return &Error{
		Kind:    KindInvalidDuration,
		Message: fmt.Sprintf("invalid duration format: %q (use a value like \"24h\", \"30m\", or \"1d\")", s),
	}
}

// lowerASCII lowercases ASCII letters without the unicode table overhead of
// strings.ToLower. Duration strings are pure ASCII by contract.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
