// Package tzconvert resolves timezone names and converts UTC timestamps to
// local wall-clock time. All timestamps coming from upstream are UTC epochs;
// conversion happens only for display.
package tzconvert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // embedded zoneinfo fallback
)

// ErrInvalidTimezone is returned when a timezone name cannot be resolved.
var ErrInvalidTimezone = errors.New("invalid timezone")

// Load resolves a timezone name.
// Accepted forms:
//   - IANA names: "Europe/Paris", "America/New_York", "UTC"
//   - fixed offsets: "UTC+9", "UTC-4", "UTC+5:30"
func Load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidTimezone)
	}

	if offset, ok := parseUTCOffset(name); ok {
		return time.FixedZone(name, offset), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTimezone, name, err)
	}
	return loc, nil
}

// EpochToLocal converts Unix seconds to wall-clock time in the named timezone.
// Example: EpochToLocal(0, "Asia/Tokyo") is 1970-01-01 09:00 JST.
func EpochToLocal(epoch int64, timezone string) (time.Time, error) {
	loc, err := Load(timezone)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(epoch, 0).In(loc), nil
}

// parseUTCOffset parses "UTC+8", "UTC-4" or "UTC+5:30" into seconds east of UTC.
// Plain "UTC" is left to time.LoadLocation.
func parseUTCOffset(name string) (int, bool) {
	if !strings.HasPrefix(name, "UTC") || len(name) < 5 {
		return 0, false
	}

	sign := 1
	switch name[3] {
	case '-':
		sign = -1
	case '+':
	default:
		return 0, false
	}

	hoursStr, minutesStr, hasMinutes := strings.Cut(name[4:], ":")
	hours, err := strconv.Atoi(hoursStr)
	if err != nil || hours < 0 || hours > 14 {
		return 0, false
	}
	minutes := 0
	if hasMinutes {
		minutes, err = strconv.Atoi(minutesStr)
		if err != nil || minutes < 0 || minutes >= 60 {
			return 0, false
		}
	}

	return sign * (hours*3600 + minutes*60), true
}
