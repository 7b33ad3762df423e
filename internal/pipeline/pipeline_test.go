package pipeline

import (
	"strings"
	"testing"
	"time"

	"shiftcal/internal/ics"
)

func icsBody(doc string) []byte {
	return []byte(strings.ReplaceAll(strings.TrimSpace(doc), "\n", "\r\n") + "\r\n")
}

const rosterDoc = `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:weekly-1
SUMMARY:John Doe - Morning Shift
DTSTART:20260907T080000Z
DTEND:20260907T160000Z
RRULE:FREQ=WEEKLY;COUNT=2
END:VEVENT
BEGIN:VEVENT
UID:single-1
SUMMARY:Jane Smith - Morning Shift
DTSTART:20260907T080000Z
DTEND:20260907T160000Z
END:VEVENT
END:VCALENDAR
`

func TestRunEndToEnd(t *testing.T) {
	docs := []Document{
		{Source: ics.Source{ID: "roster"}, Body: icsBody(rosterDoc)},
	}

	snap, err := Run(docs, Options{
		Location: time.UTC,
		Now:      time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Two weekly occurrences plus one single.
	if len(snap.Occurrences) != 3 {
		t.Fatalf("occurrences = %d, want 3", len(snap.Occurrences))
	}
	if len(snap.People) != 2 {
		t.Errorf("people = %d, want 2", len(snap.People))
	}

	// Sep 7 carries one merged shift with both people; Sep 14 only John.
	sep7 := snap.ShiftsOn(time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC))
	if len(sep7) != 1 {
		t.Fatalf("sep 7 shifts = %d, want 1 (duplicates merged)", len(sep7))
	}
	if len(sep7[0].People) != 2 {
		t.Errorf("sep 7 people = %d, want union of 2", len(sep7[0].People))
	}

	sep14 := snap.ShiftsOn(time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC))
	if len(sep14) != 1 || len(sep14[0].People) != 1 {
		t.Fatalf("sep 14 = %+v, want one shift with one person", sep14)
	}

	if len(snap.Merged) != len(snap.Shifts) {
		t.Errorf("merged/shift count mismatch: %d vs %d", len(snap.Merged), len(snap.Shifts))
	}
	if snap.BuiltAt.IsZero() {
		t.Error("BuiltAt not set")
	}
}

func TestRunFailsOnBadDocument(t *testing.T) {
	docs := []Document{
		{Source: ics.Source{ID: "good"}, Body: icsBody(rosterDoc)},
		{Source: ics.Source{ID: "broken"}, Body: []byte("not a calendar")},
	}

	snap, err := Run(docs, Options{Location: time.UTC})
	if err == nil {
		t.Fatal("bad document did not fail the run")
	}
	if snap != nil {
		t.Error("partial snapshot returned alongside error")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q does not name the failing source", err)
	}
}

func TestRunColorAssignments(t *testing.T) {
	docs := []Document{
		{Source: ics.Source{ID: "roster"}, Body: icsBody(rosterDoc)},
	}

	snap, err := Run(docs, Options{
		Location:         time.UTC,
		Now:              time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		ColorAssignments: map[string]string{"John Doe": "#112233"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, ms := range snap.Merged {
		if len(ms.Shift.People) > 0 && ms.Shift.People[0].Name == "John Doe" {
			if ms.DisplayColor != "#112233" {
				t.Errorf("display color = %q, want assignment", ms.DisplayColor)
			}
		}
	}
}
