package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "shiftcal/internal/log"
)

// ParsedEvent is the normalized representation of a VEVENT as produced by the
// ICS parser. Recurrence expansion operates on this type.
type ParsedEvent struct {
	Source Source

	UID string

	Summary     string
	Description string
	Location    string
	Color       string

	Start time.Time
	End   time.Time

	RawRRule     string
	ExDates      []time.Time
	RecurrenceID *time.Time // RECURRENCE-ID (if present)
	IsOverride   bool       // true if this VEVENT overrides a recurring instance
}

// ParseICS parses a single ICS payload into a list of ParsedEvent.
//
//   - Total-document parse failure is the only error surfaced to the caller.
//   - VEVENTs without both DTSTART and DTEND are skipped silently.
//   - RRULE/EXDATE/RECURRENCE-ID are recorded but not expanded here;
//     expansion lives in expand.go.
//   - Malformed EXDATE or RECURRENCE-ID values are logged and contribute
//     nothing.
func ParseICS(src Source, body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]ParsedEvent, 0)

	for _, comp := range cal.Events() {
		ev, ok := parseVEvent(src, comp)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "event_count", len(events))
	return events, nil
}

// parseVEvent returns ok=false for events that must be skipped (no UID, or
// missing start/end).
func parseVEvent(src Source, ve *ical.VEvent) (ParsedEvent, bool) {
	var out ParsedEvent
	out.Source = src

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		appLog.Debug("ics: skipping VEVENT without UID", "id", src.ID)
		return out, false
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	// Use the raw property name; the library has no constant for COLOR.
	if p := ve.GetProperty("COLOR"); p != nil {
		out.Color = p.Value
	}

	// DTSTART / DTEND via the library's timezone-aware helpers. Events
	// missing either are skipped, not an import error.
	start, errStart := ve.GetStartAt()
	end, errEnd := ve.GetEndAt()
	if errStart != nil || errEnd != nil || start.IsZero() || end.IsZero() {
		appLog.Debug("ics: skipping VEVENT without DTSTART/DTEND", "uid", out.UID)
		return out, false
	}
	out.Start = start
	out.End = end

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}

	// EXDATE can appear multiple times and each value may be a
	// comma-separated list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, err := parseICSTime(part)
			if err != nil {
				appLog.Warn("ics: ignoring malformed EXDATE value", "uid", out.UID, "value", part)
				continue
			}
			out.ExDates = append(out.ExDates, t)
		}
	}

	// Raw property name, matching the EXDATE handling above.
	if ridProp := ve.GetProperty("RECURRENCE-ID"); ridProp != nil {
		t, err := parseICSTime(ridProp.Value)
		if err != nil {
			appLog.Warn("ics: ignoring malformed RECURRENCE-ID", "uid", out.UID, "value", ridProp.Value)
		} else {
			out.RecurrenceID = &t
			out.IsOverride = true
		}
	}

	return out, true
}

// parseICSTime parses a basic ICS date/date-time string. EXDATE and
// RECURRENCE-ID values arrive here without full parameter context; expansion
// handles timezone alignment later.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g. 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}

	// Floating date-time, e.g. 20250101T090000
	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, time.Local)
	}

	// Date-only, e.g. 20250101
	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, time.Local)
}
