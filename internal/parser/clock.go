package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MalformedTimestampError reports a time string that is not in M:SS form.
type MalformedTimestampError struct {
	Value  string
	Reason string
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp %q: %s", e.Value, e.Reason)
}

// ParseClock converts "M:SS" (or "MM:SS") into seconds.
// Seconds are not range checked, so "1:75" is 135.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, &MalformedTimestampError{Value: s, Reason: "expected exactly one ':'"}
	}

	minutes, ok := parseDigits(parts[0])
	if !ok {
		return 0, &MalformedTimestampError{Value: s, Reason: "minutes are not numeric"}
	}
	seconds, ok := parseDigits(parts[1])
	if !ok {
		return 0, &MalformedTimestampError{Value: s, Reason: "seconds are not numeric"}
	}
	if minutes > (math.MaxInt-seconds)/60 {
		return 0, &MalformedTimestampError{Value: s, Reason: "value out of range"}
	}

	return minutes*60 + seconds, nil
}

// FormatClock renders seconds as M:SS. Negative input renders as 0:00.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatMillis renders a millisecond offset as M:SS, flooring to whole seconds.
func FormatMillis(ms int64) string {
	if ms < 0 {
		return FormatClock(0)
	}
	return FormatClock(int(ms / 1000))
}

// parseDigits accepts only a non-empty run of ASCII digits.
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
