// Package pipeline composes the shift-reconstruction stages: raw ICS
// documents are expanded into occurrences, people are extracted, and
// duplicate occurrences are merged into display-ready shifts. The whole run
// is synchronous pure-function composition over immutable inputs; any input
// change reruns it wholesale, there is no incremental update.
package pipeline

import (
	"fmt"
	"time"

	"shiftcal/internal/extract"
	"shiftcal/internal/ics"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
	"shiftcal/internal/shift"
)

// Document is one raw ICS payload plus its source identity.
type Document struct {
	Source ics.Source
	Body   []byte
}

// Options parameterizes a pipeline run.
type Options struct {
	// Location is the display timezone occurrences are normalized into.
	Location *time.Location

	// Now anchors recurrence expansion and defaults to time.Now().
	Now time.Time

	// ColorAssignments is the caller-owned person-name to hex override map.
	// The pipeline reads it and never mutates it.
	ColorAssignments map[string]string
}

// Snapshot is the immutable output of one pipeline run.
type Snapshot struct {
	Occurrences []model.RawOccurrence
	People      extract.Registry
	Shifts      []model.Shift
	Merged      []model.MergedShift
	BuiltAt     time.Time
}

// Run executes the full chain over the given documents.
//
// An unparseable document fails the whole run with no partial result;
// occurrence-level anomalies inside a parseable document degrade gracefully
// per the expander's fail-soft rules.
func Run(docs []Document, opts Options) (*Snapshot, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	var parsed []ics.ParsedEvent
	for _, doc := range docs {
		events, err := ics.ParseICS(doc.Source, doc.Body)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", doc.Source.ID, err)
		}
		parsed = append(parsed, events...)
	}

	expanded, err := ics.ExpandOccurrences(parsed, ics.ExpandConfig{
		DisplayLocation: opts.Location,
		Now:             opts.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}

	people := extract.BuildRegistry(expanded.Occurrences)
	shifts, merged := shift.Merge(expanded.Occurrences, people, opts.ColorAssignments)

	appLog.Info("pipeline run completed",
		"events", len(parsed),
		"occurrences", len(expanded.Occurrences),
		"people", len(people),
		"shifts", len(shifts),
	)

	return &Snapshot{
		Occurrences: expanded.Occurrences,
		People:      people,
		Shifts:      shifts,
		Merged:      merged,
		BuiltAt:     opts.Now,
	}, nil
}

// ShiftsOn returns the shifts of a snapshot whose start falls on the given
// calendar day, preserving merge order.
func (s *Snapshot) ShiftsOn(date time.Time) []model.Shift {
	var out []model.Shift
	for _, sh := range s.Shifts {
		if sameDay(sh.Start, date) {
			out = append(out, sh)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
