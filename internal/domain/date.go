package domain

import (
	"strings"
	"time"
)

// InvalidDate is stored in place of a date that could not be parsed.
const InvalidDate = "Invalid Date"

// TimestampLayout is the sortable form every stored activity date takes.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006-1",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"2006/1",
	"2006",
}

// NormalizeDate converts raw into TimestampLayout. Inputs without a zone are read as UTC.
func NormalizeDate(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return InvalidDate
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC().Format(TimestampLayout)
		}
	}
	return InvalidDate
}
