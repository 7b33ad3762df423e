package calendar

import (
	"testing"
	"time"

	"shiftcal/internal/model"
)

func mkShift(id string, startH, startM, endH, endM int) model.Shift {
	day := time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)
	return model.Shift{
		ID:    id,
		Title: id,
		Start: day.Add(time.Duration(startH)*time.Hour + time.Duration(startM)*time.Minute),
		End:   day.Add(time.Duration(endH)*time.Hour + time.Duration(endM)*time.Minute),
	}
}

func TestOverlaps(t *testing.T) {
	a := mkShift("a", 9, 0, 10, 0)
	b := mkShift("b", 9, 30, 10, 30)
	c := mkShift("c", 10, 0, 11, 0)

	if !Overlaps(a, b) {
		t.Error("a and b overlap")
	}
	// Half-open intervals: touching endpoints do not overlap.
	if Overlaps(a, c) {
		t.Error("a ends exactly when c starts")
	}
	if !Overlaps(b, c) {
		t.Error("b and c overlap")
	}
}

func TestFindOverlapGroupsTransitiveClosure(t *testing.T) {
	// A overlaps B, B overlaps C, A and C are disjoint: one group of three.
	a := mkShift("a", 9, 0, 10, 0)
	b := mkShift("b", 9, 30, 10, 30)
	c := mkShift("c", 10, 15, 11, 0)
	d := mkShift("d", 14, 0, 15, 0)

	groups := findOverlapGroups([]model.Shift{a, b, c, d})
	if len(groups) != 2 {
		t.Fatalf("group count = %d, want 2", len(groups))
	}
	if len(groups[0]) != 3 {
		t.Errorf("first group size = %d, want 3 (chain a~b~c)", len(groups[0]))
	}
	if len(groups[1]) != 1 || groups[1][0].ID != "d" {
		t.Errorf("second group = %v, want lone d", groups[1])
	}
}

func TestPositionsStackingAndRows(t *testing.T) {
	a := mkShift("a", 9, 0, 10, 0)
	b := mkShift("b", 9, 30, 10, 30)

	positions := Positions([]model.Shift{b, a}, 8, nil)
	if len(positions) != 2 {
		t.Fatalf("position count = %d", len(positions))
	}

	// Start-time order decides the stack regardless of input order.
	if positions[0].Shift.ID != "a" || positions[1].Shift.ID != "b" {
		t.Fatalf("stack order = [%s, %s], want [a, b]",
			positions[0].Shift.ID, positions[1].Shift.ID)
	}

	base := positions[0]
	if base.RowStart != 60 || base.RowEnd != 120 {
		t.Errorf("a rows = %d..%d, want 60..120 (minutes past 08:00)", base.RowStart, base.RowEnd)
	}
	if base.ZIndex != 10 || base.IndexInGroup != 0 || base.GroupSize != 2 {
		t.Errorf("a stack = z%d idx%d size%d", base.ZIndex, base.IndexInGroup, base.GroupSize)
	}

	top := positions[1]
	if top.RowStart != 90 || top.RowEnd != 150 {
		t.Errorf("b rows = %d..%d, want 90..150", top.RowStart, top.RowEnd)
	}
	if top.ZIndex != 11 || top.IndexInGroup != 1 {
		t.Errorf("b stack = z%d idx%d", top.ZIndex, top.IndexInGroup)
	}
}

func TestPositionsColorFallback(t *testing.T) {
	withPerson := mkShift("a", 9, 0, 10, 0)
	withPerson.People = []model.Person{{ID: "p", Name: "Pat", Color: "#10b981"}}
	bare := mkShift("b", 12, 0, 13, 0)

	positions := Positions([]model.Shift{withPerson, bare}, 8, map[string]string{"a": "#112233"})

	byID := make(map[string]model.ShiftPosition)
	for _, p := range positions {
		byID[p.Shift.ID] = p
	}
	if byID["a"].DisplayColor != "#112233" {
		t.Errorf("mapped color = %q, want map entry", byID["a"].DisplayColor)
	}
	if byID["b"].DisplayColor != "#d1d5db" {
		t.Errorf("bare color = %q, want neutral gray", byID["b"].DisplayColor)
	}

	positions = Positions([]model.Shift{withPerson}, 8, nil)
	if positions[0].DisplayColor != "#10b981" {
		t.Errorf("person color = %q", positions[0].DisplayColor)
	}
}

func TestPositionsEmpty(t *testing.T) {
	if got := Positions(nil, 8, nil); got != nil {
		t.Errorf("Positions(nil) = %v, want nil", got)
	}
}
