package model

import (
	"fmt"
	"time"
)

// RawOccurrence represents a single concrete instance of a calendar event
// after recurrence expansion and timezone normalization. Immutable once
// produced by the expander.
type RawOccurrence struct {
	// ID uniquely identifies this occurrence: "{uid}_{start unix}".
	ID string

	Summary     string
	Description string
	Location    string

	// Color is the ICS COLOR property, if present.
	Color string

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time

	// SourceUID is the iCalendar UID of the originating VEVENT.
	SourceUID string

	// RecurrenceID is set when this occurrence came from a RECURRENCE-ID
	// override of a recurring series.
	RecurrenceID *time.Time

	// IsException marks occurrences built from an override's own fields
	// rather than the recurring master's.
	IsException bool

	// IsDeleted is reserved for EXDATE-suppressed occurrences; the expander
	// omits those entirely, so emitted occurrences always carry false.
	IsDeleted bool
}

// Person is one worker extracted from event summaries. ID is a deterministic
// slug of the normalized name, so identical names always collide to the same
// Person. The registry is rebuilt on every import; nothing here is persisted.
type Person struct {
	ID   string
	Name string

	// Color is the palette color assigned on first sight during extraction.
	Color string

	// ColorOverride is a user-assigned color carried on the person itself.
	ColorOverride string
}

// Shift is the canonical, de-duplicated unit of "who works this title during
// this time window". Multiple occurrences sharing (start, end, title)
// collapse into one Shift with their people unioned.
type Shift struct {
	// ID is the deterministic merge key "{start}|{end}|{title}" at minute
	// resolution.
	ID string

	Title       string
	Start       time.Time
	End         time.Time
	Location    string
	Description string

	People []Person
}

// Key builds the canonical shift key for a (start, end, title) triple.
func Key(start, end time.Time, title string) string {
	const layout = "2006-01-02 15:04"
	return fmt.Sprintf("%s|%s|%s", start.Format(layout), end.Format(layout), title)
}

// MergedShift is the display-ready wrapper around a Shift. It is produced at
// merge time and never mutated afterwards within a render pass; any input
// change recomputes the whole set.
type MergedShift struct {
	ShiftKey string
	Shift    Shift

	// PeopleList is the truncated human string, e.g. "A, B, +2 more",
	// or "Unassigned" when the shift has no people.
	PeopleList string

	// DisplayColor is the resolved color for this shift.
	DisplayColor string
}

// CalendarDay is one cell of a month or week grid. Shifts are the merged
// shifts whose start falls on this calendar date.
type CalendarDay struct {
	Date      time.Time
	Shifts    []MergedShift
	IsToday   bool
	IsWeekend bool
}

// CalendarWeek is a Sunday-to-Saturday row of seven days.
type CalendarWeek struct {
	WeekNumber int
	Days       []CalendarDay
}

// ShiftPosition is the computed placement of one shift in a week-view time
// grid. Ephemeral: recomputed per render, never stored.
type ShiftPosition struct {
	Shift        Shift
	DisplayColor string

	// RowStart / RowEnd are minutes elapsed since the display start hour.
	RowStart int
	RowEnd   int

	// ZIndex orders rendering; later members of an overlap group layer
	// above earlier ones.
	ZIndex int

	// IndexInGroup is the stacking index within the overlap group
	// (0 = base layer).
	IndexInGroup int

	// GroupSize is the total number of shifts in this overlap group, for
	// consumers doing proportional width/offset math.
	GroupSize int
}
