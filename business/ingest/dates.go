package ingest

import (
	"strings"
	"time"
)

// Layouts seen across the source files, most specific first.
var dateLayouts = []string{
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006",
	time.RFC3339,
}

// ParseDate parses a date cell from a source file. Empty cells and the
// usual null spellings yield (nil, true); an unparsable non-empty value
// yields (nil, false) so the caller can count the row as malformed.
func ParseDate(value string) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}

	switch strings.ToLower(value) {
	case "none", "null", "nan", "-":
		return nil, true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, true
		}
	}

	return nil, false
}

// IsActiveOn reports whether an event is still relevant on the given day.
// Events without any date are treated as always relevant.
func IsActiveOn(today time.Time, start, end *time.Time) bool {
	day := today.Truncate(24 * time.Hour)

	switch {
	case start == nil && end == nil:
		return true
	case end != nil:
		return !end.Before(day)
	default:
		return !start.Before(day)
	}
}
