package model

import (
	"strings"
	"time"
)

// CalendarEvent is the output unit of the agenda pipeline: one finished,
// filtered event ready for serialization. Immutable once materialized.
type CalendarEvent struct {
	// Title is the event name, trimmed and length-bounded.
	Title string

	// Start and End are concrete instants in the configured local timezone.
	// End is always strictly after Start.
	Start time.Time
	End   time.Time

	// Location is the venue line, if one was recognized. May be empty.
	Location string

	// Description carries the source attribution line plus any extra
	// context lines, newline-joined.
	Description string
}

// Key returns the identity tuple used for deduplication and for deriving
// stable ICS UIDs: (title, start, end, location-or-empty).
func (e CalendarEvent) Key() string {
	return strings.Join([]string{
		e.Title,
		e.Start.Format(time.RFC3339),
		e.End.Format(time.RFC3339),
		e.Location,
	}, "|")
}
