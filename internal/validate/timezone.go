package validate

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrMalformedTimezone is returned when an ISO 8601 timestamp carries a UTC
// offset that matches none of the enumerated zones at that instant.
var ErrMalformedTimezone = errors.New("the timezone offset was malformed; examples of proper offsets are +01:30 or -06:00")

// americaFirstZones is the enumerated set of named time zones an incoming
// UTC offset may resolve to. US zones are listed first so that ambiguous
// offsets prefer them; the first zone whose offset at the given instant
// matches exactly wins.
var americaFirstZones = []string{
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Phoenix",
	"America/Los_Angeles",
	"America/Anchorage",
	"Pacific/Honolulu",
	"UTC",
	"Europe/London",
	"Europe/Paris",
	"Europe/Moscow",
	"Asia/Kolkata",
	"Asia/Shanghai",
	"Asia/Tokyo",
	"Australia/Sydney",
}

var isoDateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{2}:\d{2}$`)

// ZonedTime is the cleaned value produced by the ISO date-time validator.
// It carries both the resolved named zone and the UTC-normalized instant so
// the original wall-clock context is not lost.
type ZonedTime struct {
	// Zone is the resolved named time zone, e.g. "America/Chicago".
	Zone string

	// UTC is the instant normalized to UTC with the offset stripped.
	UTC time.Time
}

// ParseISODateTime parses an ISO 8601 date-time string with an explicit
// UTC offset (YYYY-MM-DDTHH:MM:SS+hh:mm) and resolves the offset to one of
// the enumerated named zones by exact offset match at that instant,
// accounting for daylight saving. Returns ErrMalformedTimezone when no
// enumerated zone has that exact offset.
func ParseISODateTime(value string) (ZonedTime, error) {
	if !isoDateTimePattern.MatchString(value) {
		return ZonedTime{}, fmt.Errorf("enter a valid ISO 8601 format time string; form is YYYY-MM-DDTHH:MM:SS+hh:mm")
	}

	parsed, err := time.Parse("2006-01-02T15:04:05-07:00", value)
	if err != nil {
		return ZonedTime{}, fmt.Errorf("enter a valid ISO 8601 format time string: %w", err)
	}

	_, parsedOffset := parsed.Zone()

	zone, ok := resolveZone(parsed, parsedOffset)
	if !ok {
		return ZonedTime{}, ErrMalformedTimezone
	}

	return ZonedTime{
		Zone: zone,
		UTC:  parsed.UTC(),
	}, nil
}

// resolveZone finds the first enumerated zone whose offset at the given
// instant equals offsetSeconds exactly.
func resolveZone(instant time.Time, offsetSeconds int) (string, bool) {
	for _, name := range americaFirstZones {
		loc, err := time.LoadLocation(name)
		if err != nil {
			continue
		}
		_, zoneOffset := instant.In(loc).Zone()
		if zoneOffset == offsetSeconds {
			return name, true
		}
	}
	return "", false
}
