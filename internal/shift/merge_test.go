package shift

import (
	"testing"
	"time"

	"shiftcal/internal/extract"
	"shiftcal/internal/model"
)

func occ(summary string, start, end time.Time) model.RawOccurrence {
	return model.RawOccurrence{
		ID:      summary + "_" + start.Format("150405"),
		Summary: summary,
		Start:   start,
		End:     end,
	}
}

func TestMergeUnionsPeopleAcrossDuplicates(t *testing.T) {
	start := time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	occs := []model.RawOccurrence{
		occ("John Doe - Morning Shift", start, end),
		occ("Jane Smith - Morning Shift", start, end),
		occ("john doe - Morning Shift", start, end),
	}
	reg := extract.BuildRegistry(occs)

	shifts, merged := Merge(occs, reg, nil)

	if len(shifts) != 1 {
		t.Fatalf("shift count = %d, want 1", len(shifts))
	}
	s := shifts[0]
	if s.Title != "Morning Shift" {
		t.Errorf("title = %q", s.Title)
	}
	// "john doe" shares the slug with "John Doe", so the union has two people.
	if len(s.People) != 2 {
		t.Fatalf("people = %v, want 2 distinct ids", s.People)
	}
	if s.People[0].Name != "John Doe" || s.People[1].Name != "Jane Smith" {
		t.Errorf("people order = [%s, %s]", s.People[0].Name, s.People[1].Name)
	}

	if len(merged) != 1 {
		t.Fatalf("merged count = %d, want 1", len(merged))
	}
	if merged[0].PeopleList != "John Doe, Jane Smith" {
		t.Errorf("people list = %q", merged[0].PeopleList)
	}
	if merged[0].ShiftKey != model.Key(start, end, "Morning Shift") {
		t.Errorf("shift key = %q", merged[0].ShiftKey)
	}
}

func TestMergeSeparatesByTimeAndTitle(t *testing.T) {
	morning := time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, time.September, 7, 16, 0, 0, 0, time.UTC)

	occs := []model.RawOccurrence{
		occ("John Doe - Morning Shift", morning, morning.Add(8*time.Hour)),
		occ("John Doe - Evening Shift", evening, evening.Add(8*time.Hour)),
		occ("Jane Smith - Morning Shift", evening, evening.Add(8*time.Hour)),
	}
	reg := extract.BuildRegistry(occs)

	shifts, _ := Merge(occs, reg, nil)
	if len(shifts) != 3 {
		t.Fatalf("shift count = %d, want 3 (distinct key per time+title)", len(shifts))
	}
}

func TestMergeFirstOccurrenceMetadataWins(t *testing.T) {
	start := time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	first := occ("John Doe - Morning Shift", start, end)
	first.Location = "Front Desk"
	first.Description = "Opening duties"
	second := occ("Jane Smith - Morning Shift", start, end)
	second.Location = "Back Office"

	occs := []model.RawOccurrence{first, second}
	reg := extract.BuildRegistry(occs)

	shifts, _ := Merge(occs, reg, nil)
	if len(shifts) != 1 {
		t.Fatalf("shift count = %d, want 1", len(shifts))
	}
	if shifts[0].Location != "Front Desk" {
		t.Errorf("location = %q, want first occurrence's", shifts[0].Location)
	}
	if shifts[0].Description != "Opening duties" {
		t.Errorf("description = %q", shifts[0].Description)
	}
}

func TestMergeColorResolution(t *testing.T) {
	start := time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	occs := []model.RawOccurrence{occ("John Doe - Morning Shift", start, end)}
	reg := extract.BuildRegistry(occs)

	_, merged := Merge(occs, reg, map[string]string{"John Doe": "#112233"})
	if merged[0].DisplayColor != "#112233" {
		t.Errorf("display color = %q, want assignment override", merged[0].DisplayColor)
	}

	_, merged = Merge(occs, reg, nil)
	if merged[0].DisplayColor != reg["John Doe"].Color {
		t.Errorf("display color = %q, want registry color %q", merged[0].DisplayColor, reg["John Doe"].Color)
	}
}

func TestMergeUnassignedShift(t *testing.T) {
	start := time.Date(2026, time.September, 7, 12, 0, 0, 0, time.UTC)

	occs := []model.RawOccurrence{occ("Lunch Break", start, start.Add(time.Hour))}
	reg := extract.BuildRegistry(occs)

	shifts, merged := Merge(occs, reg, nil)
	if len(shifts) != 1 {
		t.Fatalf("shift count = %d, want 1", len(shifts))
	}
	if len(shifts[0].People) != 0 {
		t.Errorf("people = %v, want none", shifts[0].People)
	}
	if merged[0].PeopleList != "Unassigned" {
		t.Errorf("people list = %q", merged[0].PeopleList)
	}
	if merged[0].DisplayColor != "#d1d5db" {
		t.Errorf("display color = %q, want neutral gray", merged[0].DisplayColor)
	}
}

func TestPeopleListTruncation(t *testing.T) {
	mk := func(names ...string) []model.Person {
		out := make([]model.Person, len(names))
		for i, n := range names {
			out[i] = model.Person{ID: n, Name: n}
		}
		return out
	}

	tests := []struct {
		people []model.Person
		want   string
	}{
		{nil, "Unassigned"},
		{mk("A"), "A"},
		{mk("A", "B", "C"), "A, B, C"},
		{mk("A", "B", "C", "D"), "A, B, +2 more"},
		{mk("A", "B", "C", "D", "E", "F"), "A, B, +4 more"},
	}

	for _, tt := range tests {
		if got := peopleList(tt.people); got != tt.want {
			t.Errorf("peopleList(%d people) = %q, want %q", len(tt.people), got, tt.want)
		}
	}
}
