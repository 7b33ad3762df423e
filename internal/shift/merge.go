// Package shift collapses raw occurrences into canonical shifts: one Shift
// per (start, end, title) key with the people of every duplicate occurrence
// unioned together.
package shift

import (
	"fmt"
	"strings"

	"shiftcal/internal/color"
	"shiftcal/internal/extract"
	"shiftcal/internal/model"
)

// Merge groups occurrences by their (start, end, title) key and builds one
// Shift plus its display-ready MergedShift per group.
//
// People are extracted from every occurrence's summary and resolved through
// the registry; names that resolve to no registered person are silently
// dropped (extraction is lossy by design). Shift metadata - title, times,
// location, description - comes from the group's first occurrence only;
// later occurrences contribute people, never metadata.
func Merge(
	occurrences []model.RawOccurrence,
	people extract.Registry,
	colorAssignments map[string]string,
) ([]model.Shift, []model.MergedShift) {
	groups := make(map[string][]model.RawOccurrence)
	var order []string

	for _, occ := range occurrences {
		ex := extract.PeopleAndTitle(occ.Summary)
		key := model.Key(occ.Start, occ.End, ex.Title)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], occ)
	}

	shifts := make([]model.Shift, 0, len(order))
	merged := make([]model.MergedShift, 0, len(order))

	for _, key := range order {
		group := groups[key]

		// Union people across the whole group, deduplicated by person id.
		var groupPeople []model.Person
		seen := make(map[string]struct{})
		for _, occ := range group {
			ex := extract.PeopleAndTitle(occ.Summary)
			for _, name := range ex.Names {
				person, ok := people[name]
				if !ok {
					continue
				}
				if _, dup := seen[person.ID]; dup {
					continue
				}
				seen[person.ID] = struct{}{}
				groupPeople = append(groupPeople, person)
			}
		}

		representative := group[0]
		ex := extract.PeopleAndTitle(representative.Summary)

		s := model.Shift{
			ID:          key,
			Title:       ex.Title,
			Start:       representative.Start,
			End:         representative.End,
			Location:    representative.Location,
			Description: representative.Description,
			People:      groupPeople,
		}

		shifts = append(shifts, s)
		merged = append(merged, model.MergedShift{
			ShiftKey:     key,
			Shift:        s,
			PeopleList:   peopleList(s.People),
			DisplayColor: color.ShiftColor(s, colorAssignments),
		})
	}

	return shifts, merged
}

// peopleList renders the truncated human string for a shift's people:
// all names up to three, then "A, B, +N more", and "Unassigned" when empty.
func peopleList(people []model.Person) string {
	if len(people) == 0 {
		return "Unassigned"
	}

	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.Name
	}

	if len(names) <= 3 {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(names[:2], ", "), len(names)-2)
}
