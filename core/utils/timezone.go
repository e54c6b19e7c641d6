package utils

import (
	"fmt"
	"time"
)

// ParseOffset turns "+05:30" / "-03:00" / "Z" into a fixed zone.
func ParseOffset(offset string) (*time.Location, error) {
	if offset == "" || offset == "Z" || offset == "+00:00" {
		return time.UTC, nil
	}
	t, err := time.Parse("-07:00", offset)
	if err != nil {
		return nil, fmt.Errorf("invalid utc offset %q: %w", offset, err)
	}
	_, secs := t.Zone()
	return time.FixedZone("UTC"+offset, secs), nil
}

// ParseClock parses "HH:MM" into a duration since midnight.
func ParseClock(clock string) (time.Duration, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ToDisplay converts a stored instant into the display offset. The instant is unchanged.
func ToDisplay(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}

// FromDisplay converts a display instant back to the UTC form used for storage.
func FromDisplay(t time.Time) time.Time {
	return t.UTC()
}

// FormatDisplay renders t as RFC 3339 in the display offset, e.g. 2024-12-05T09:00:00+05:30.
func FormatDisplay(t time.Time, loc *time.Location) string {
	return ToDisplay(t, loc).Format(time.RFC3339)
}

// ParseDisplay is the inverse of FormatDisplay.
func ParseDisplay(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return FromDisplay(t), nil
}
