package helpers

import (
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// ParseTimeParam parses an ISO 8601 query value. It accepts RFC 3339 with or
// without fractional seconds, and a plain date which means UTC midnight.
func ParseTimeParam(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateOnly, value, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s must be an ISO 8601 date or date-time", name)
}
