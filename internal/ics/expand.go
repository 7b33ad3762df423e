package ics

import (
	"errors"
	"strconv"
	"time"

	"github.com/teambition/rrule-go"

	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
	defaultHorizonYears           = 2
)

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the timezone to which all occurrences will be
	// converted. If nil, time.Local is used.
	DisplayLocation *time.Location

	// Now anchors the expansion horizon; recurring masters are expanded
	// HorizonYears forward from this moment. Zero means time.Now().
	Now time.Time

	// HorizonYears defaults to 2.
	HorizonYears int

	// MaxOccurrencesPerEvent is a safety cap to avoid extremely large
	// expansions. If zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the list of expanded occurrences and optionally
// information about truncation.
type ExpandResult struct {
	Occurrences []model.RawOccurrence
	// TruncatedEvents records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
}

// ExpandOccurrences turns parsed VEVENTs into concrete occurrences.
//
// Events are classified into exactly one of: recurring master (RRULE, no
// RECURRENCE-ID), exception (RECURRENCE-ID), single event (neither). Masters
// are expanded through their RRULE; an occurrence whose day matches an EXDATE
// (UTC-day granularity) is omitted, and an occurrence whose timestamp matches
// an exception's RECURRENCE-ID is replaced by the exception's own fields.
// Exceptions with no matching occurrence are never emitted on their own.
//
// Failure policy is fail-soft throughout: a master whose RRULE cannot be
// parsed or iterated degrades to a single occurrence; only total-document
// parse failure (in ParseICS) aborts an import.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.HorizonYears <= 0 {
		cfg.HorizonYears = defaultHorizonYears
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	masters := make(map[string][]ParsedEvent)
	exceptionsByUID := make(map[string][]ParsedEvent)
	singles := make([]ParsedEvent, 0)

	for _, ev := range events {
		switch {
		case ev.IsOverride && ev.RecurrenceID != nil:
			exceptionsByUID[ev.UID] = append(exceptionsByUID[ev.UID], ev)
		case ev.RawRRule != "":
			masters[ev.UID] = append(masters[ev.UID], ev)
		default:
			singles = append(singles, ev)
		}
	}

	all := make([]model.RawOccurrence, 0)

	for uid, baseEvents := range masters {
		exceptions := exceptionsByUID[uid]
		truncated := false

		for _, ev := range baseEvents {
			occ, hitCap := expandRecurringEvent(ev, exceptions, cfg)
			if hitCap {
				truncated = true
			}
			all = append(all, occ...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Error("expand: truncated occurrences for UID due to cap",
				errors.New("max occurrences reached"),
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	for _, ev := range singles {
		all = append(all, makeOccurrence(ev, ev.Start, ev.End, cfg.DisplayLocation))
	}

	result.Occurrences = all
	return result, nil
}

func expandRecurringEvent(ev ParsedEvent, exceptions []ParsedEvent, cfg ExpandConfig) ([]model.RawOccurrence, bool) {
	out := make([]model.RawOccurrence, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		// Fail-soft: emit the master's single un-expanded occurrence.
		appLog.Warn("expand: unparseable RRULE, emitting master as single occurrence",
			"uid", ev.UID, "rrule", ev.RawRRule, "err", err)
		out = append(out, makeOccurrence(ev, ev.Start, ev.End, cfg.DisplayLocation))
		return out, false
	}
	r.DTStart(ev.Start)

	// Exceptions are matched by exact instant of the generated occurrence.
	exceptionByInstant := make(map[int64]ParsedEvent, len(exceptions))
	for _, exc := range exceptions {
		if exc.RecurrenceID != nil {
			exceptionByInstant[exc.RecurrenceID.Unix()] = exc
		}
	}

	// EXDATE removal is day-granular: each exclusion marks a whole UTC day.
	excludedDays := make(map[int64]struct{}, len(ev.ExDates))
	for _, ex := range ev.ExDates {
		excludedDays[utcDayKey(ex)] = struct{}{}
	}

	horizon := cfg.Now.AddDate(cfg.HorizonYears, 0, 0)
	occTimes := r.Between(ev.Start, horizon, true)

	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	duration := ev.End.Sub(ev.Start)

	for _, occStart := range occTimes {
		if _, excluded := excludedDays[utcDayKey(occStart)]; excluded {
			continue
		}

		if exc, ok := exceptionByInstant[occStart.Unix()]; ok {
			// The exception replaces this occurrence entirely, using its
			// own start/end/summary.
			occ := makeOccurrence(exc, exc.Start, exc.End, cfg.DisplayLocation)
			occ.IsException = true
			occ.RecurrenceID = exc.RecurrenceID
			out = append(out, occ)
			continue
		}

		out = append(out, makeOccurrence(ev, occStart, occStart.Add(duration), cfg.DisplayLocation))
	}

	return out, hitCap
}

// utcDayKey collapses an instant to its UTC calendar day (midnight UTC).
func utcDayKey(t time.Time) int64 {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// makeOccurrence converts a (possibly overridden) ParsedEvent + specific
// start/end time into a RawOccurrence normalized into displayLoc.
func makeOccurrence(ev ParsedEvent, start, end time.Time, displayLoc *time.Location) model.RawOccurrence {
	startLocal := start.In(displayLoc)
	endLocal := end.In(displayLoc)

	return model.RawOccurrence{
		ID:          ev.UID + "_" + strconv.FormatInt(startLocal.Unix(), 10),
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Color:       ev.Color,
		Start:       startLocal,
		End:         endLocal,
		SourceUID:   ev.UID,
	}
}
