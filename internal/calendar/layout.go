package calendar

import (
	"sort"

	"shiftcal/internal/color"
	"shiftcal/internal/model"
)

// Overlaps reports half-open interval overlap: touching endpoints do not
// overlap.
func Overlaps(a, b model.Shift) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Positions computes the stacked placement of one day's shifts in the week
// time grid.
//
// Shifts are first partitioned into overlap groups (transitive closure: a
// shift joins a group when it overlaps any member, so chains like A~B~C land
// in one group even when A and C are disjoint). Within a group, members are
// stacked in start-time order with index 0 at the base layer. Row offsets
// are minutes elapsed since startHour.
//
// displayColor comes from colorMap (keyed by shift id) when present, else
// the shift's first person's color, else neutral gray.
func Positions(dayShifts []model.Shift, startHour int, colorMap map[string]string) []model.ShiftPosition {
	if len(dayShifts) == 0 {
		return nil
	}

	var positions []model.ShiftPosition

	for _, group := range findOverlapGroups(dayShifts) {
		sorted := make([]model.Shift, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Start.Before(sorted[j].Start)
		})

		for idx, s := range sorted {
			displayColor := colorMap[s.ID]
			if displayColor == "" {
				if len(s.People) > 0 {
					displayColor = s.People[0].Color
				} else {
					displayColor = color.Unassigned
				}
			}

			positions = append(positions, model.ShiftPosition{
				Shift:        s,
				DisplayColor: displayColor,
				RowStart:     (s.Start.Hour()-startHour)*60 + s.Start.Minute(),
				RowEnd:       (s.End.Hour()-startHour)*60 + s.End.Minute(),
				ZIndex:       10 + idx,
				IndexInGroup: idx,
				GroupSize:    len(sorted),
			})
		}
	}

	return positions
}

// findOverlapGroups partitions shifts into maximal transitively-overlapping
// groups: repeatedly absorb any ungrouped shift overlapping any member of
// the growing group until nothing more can be absorbed.
func findOverlapGroups(shifts []model.Shift) [][]model.Shift {
	var groups [][]model.Shift
	used := make(map[int]struct{}, len(shifts))

	for i := range shifts {
		if _, ok := used[i]; ok {
			continue
		}

		group := []model.Shift{shifts[i]}
		used[i] = struct{}{}

		changed := true
		for changed {
			changed = false
			for j := range shifts {
				if _, ok := used[j]; ok {
					continue
				}
				for _, member := range group {
					if Overlaps(member, shifts[j]) {
						group = append(group, shifts[j])
						used[j] = struct{}{}
						changed = true
						break
					}
				}
			}
		}

		groups = append(groups, group)
	}

	return groups
}
