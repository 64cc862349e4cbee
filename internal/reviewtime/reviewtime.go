// Package reviewtime parses the loosely formatted timestamps found in review
// payloads and renders them in one sortable canonical form.
package reviewtime

import (
	"strings"
	"time"
)

// Layout is the canonical timestamp format: UTC, millisecond precision. Strings in
// this format sort lexically in chronological order.
const Layout = "2006-01-02T15:04:05.000Z"

// PeriodLayout is the fixed-width year-month bucket key.
const PeriodLayout = "2006-01"

// Layouts without a zone are read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2006-01",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"January 2, 2006 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Parse reads s with the first matching layout.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Format renders t in the canonical layout.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Canonical re-renders s in the canonical layout. Unparseable input is returned
// unchanged, never discarded.
func Canonical(s string) string {
	t, ok := Parse(s)
	if !ok {
		return s
	}
	return Format(t)
}

// Period is the UTC year-month bucket for t.
func Period(t time.Time) string {
	return t.UTC().Format(PeriodLayout)
}
