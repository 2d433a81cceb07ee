package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Calendar-ish durations. Months and years are approximate.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

// ErrInvalidDuration is returned when a duration string cannot be parsed.
var ErrInvalidDuration = errors.New("invalid duration")

var durationPattern = regexp.MustCompile(`(?i)^([0-9]+(?:\.[0-9]+)?)\s*(d|w|mo|y)$`)

// ParseDuration parses "30d", "2w", "3mo", "1y" or any Go duration such as
// "36h".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidDuration)
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: negative duration %q", ErrInvalidDuration, s)
	}

	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		return d, nil
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var unit time.Duration
	switch strings.ToLower(m[2]) {
	case "d":
		unit = Day
	case "w":
		unit = Week
	case "mo":
		unit = Month
	default:
		unit = Year
	}
	return time.Duration(value * float64(unit)), nil
}
