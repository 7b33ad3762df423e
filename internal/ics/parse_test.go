package ics

import (
	"testing"
	"time"
)

func TestParseICSSkipsEventsWithoutTimes(t *testing.T) {
	events := parseFixture(t, `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:no-end
SUMMARY:John Doe - Morning Shift
DTSTART:20260907T080000Z
END:VEVENT
BEGIN:VEVENT
UID:complete
SUMMARY:Jane Smith - Day Shift
DTSTART:20260907T080000Z
DTEND:20260907T160000Z
END:VEVENT
END:VCALENDAR
`)

	if len(events) != 1 {
		t.Fatalf("event count = %d, want 1 (timeless event skipped)", len(events))
	}
	if events[0].UID != "complete" {
		t.Errorf("surviving uid = %q", events[0].UID)
	}
}

func TestParseICSReadsRecurrenceFields(t *testing.T) {
	events := parseFixture(t, `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:weekly-1
SUMMARY:John Doe - Morning Shift
LOCATION:Front Desk
COLOR:#ef4444
DTSTART:20260907T080000Z
DTEND:20260907T160000Z
RRULE:FREQ=WEEKLY;COUNT=4
EXDATE:20260914T080000Z,20260921T080000Z
END:VEVENT
END:VCALENDAR
`)

	if len(events) != 1 {
		t.Fatalf("event count = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.RawRRule != "FREQ=WEEKLY;COUNT=4" {
		t.Errorf("rrule = %q", ev.RawRRule)
	}
	if len(ev.ExDates) != 2 {
		t.Fatalf("exdate count = %d, want 2", len(ev.ExDates))
	}
	if !ev.ExDates[0].Equal(time.Date(2026, time.September, 14, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("exdate[0] = %v", ev.ExDates[0])
	}
	if ev.Location != "Front Desk" {
		t.Errorf("location = %q", ev.Location)
	}
	if ev.Color != "#ef4444" {
		t.Errorf("color = %q", ev.Color)
	}
	if ev.IsOverride || ev.RecurrenceID != nil {
		t.Error("master misclassified as override")
	}
}

func TestParseICSOverrideFlag(t *testing.T) {
	events := parseFixture(t, `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:weekly-1
RECURRENCE-ID:20260914T080000Z
SUMMARY:John Doe - Late Start
DTSTART:20260914T090000Z
DTEND:20260914T170000Z
END:VEVENT
END:VCALENDAR
`)

	if len(events) != 1 {
		t.Fatalf("event count = %d, want 1", len(events))
	}
	ev := events[0]
	if !ev.IsOverride || ev.RecurrenceID == nil {
		t.Fatal("override not flagged")
	}
	if !ev.RecurrenceID.Equal(time.Date(2026, time.September, 14, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("recurrence-id = %v", *ev.RecurrenceID)
	}
}

func TestParseICSRejectsGarbage(t *testing.T) {
	if _, err := ParseICS(Source{ID: "test"}, []byte("this is not a calendar")); err == nil {
		t.Error("garbage document did not error")
	}
	if _, err := ParseICS(Source{ID: "test"}, nil); err == nil {
		t.Error("empty body did not error")
	}
}

func TestParseICSTime(t *testing.T) {
	got, err := parseICSTime("20260907T080000Z")
	if err != nil {
		t.Fatalf("utc form: %v", err)
	}
	if !got.Equal(time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("utc form = %v", got)
	}

	got, err = parseICSTime("20260907T080000")
	if err != nil {
		t.Fatalf("floating form: %v", err)
	}
	if got.Hour() != 8 || got.Day() != 7 {
		t.Errorf("floating form = %v", got)
	}

	got, err = parseICSTime("20260907")
	if err != nil {
		t.Fatalf("date form: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.September || got.Day() != 7 {
		t.Errorf("date form = %v", got)
	}

	if _, err := parseICSTime(""); err == nil {
		t.Error("empty value did not error")
	}
	if _, err := parseICSTime("not-a-time"); err == nil {
		t.Error("malformed value did not error")
	}
}
