package models

import "time"

// DateOnly truncates a timestamp to its calendar day in UTC
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same UTC calendar day
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// ESPNDate formats a date the way the ESPN scoreboard endpoints expect (YYYYMMDD)
func ESPNDate(t time.Time) string {
	return t.UTC().Format("20060102")
}

// ParseESPNTimestamp parses the event timestamps returned by the ESPN site API.
// Two layouts show up in practice depending on the feed.
func ParseESPNTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04Z", s)
}
