package shared

import (
	"strings"
	"time"
)

// upstreamLayouts are the date layouts emitted by the JASS services.
var upstreamLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
	"15:04",
}

// ParseTime parses a date or timestamp as sent by the upstream services.
// It returns the zero time when the value cannot be parsed.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range upstreamLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
