// Package calendar arranges merged shifts into Sunday-start week and month
// grid structures and computes the stacked time-grid layout for week views.
package calendar

import (
	"time"

	"shiftcal/internal/model"
)

// StartOfWeek returns midnight of the Sunday beginning the week containing t,
// in t's location.
func StartOfWeek(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// SameDay compares two instants by raw calendar fields. Occurrence times are
// normalized into the display timezone upstream, so this is the display
// zone's notion of "the same day".
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// BuildWeek returns the seven days of the Sunday-start week containing date,
// each populated with the merged shifts starting on that calendar day.
// Per-day order is grouping-insertion order; the week layout is spatial, so
// no list sort is applied here. now determines the IsToday flag.
func BuildWeek(date time.Time, merged []model.MergedShift, now time.Time) []model.CalendarDay {
	weekStart := StartOfWeek(date)

	days := make([]model.CalendarDay, 7)
	for i := range days {
		days[i] = buildDay(weekStart.AddDate(0, 0, i), merged, now, false)
	}
	return days
}

func buildDay(date time.Time, merged []model.MergedShift, now time.Time, sorted bool) model.CalendarDay {
	var dayShifts []model.MergedShift
	for _, ms := range merged {
		if SameDay(ms.Shift.Start, date) {
			dayShifts = append(dayShifts, ms)
		}
	}
	if sorted {
		sortDayShifts(dayShifts)
	}

	wd := date.Weekday()
	return model.CalendarDay{
		Date:      date,
		Shifts:    dayShifts,
		IsToday:   SameDay(date, now),
		IsWeekend: wd == time.Sunday || wd == time.Saturday,
	}
}

// DetectTimeRange scans every shift across the given days and returns the
// observed activity window padded by one hour on each side, clamped to
// [0, 24]. ok is false when no shifts exist; callers then fall back to their
// configured default range rather than this function inventing one.
func DetectTimeRange(days []model.CalendarDay) (startHour, endHour int, ok bool) {
	minHour := 23
	maxHour := 0

	for _, day := range days {
		for _, ms := range day.Shifts {
			ok = true
			if h := ms.Shift.Start.Hour(); h < minHour {
				minHour = h
			}
			if h := ms.Shift.End.Hour(); h > maxHour {
				maxHour = h
			}
		}
	}
	if !ok {
		return 0, 0, false
	}

	startHour = max(0, minHour-1)
	endHour = min(24, maxHour+1)
	return startHour, endHour, true
}

// TimeSlots lists the hour labels for the week grid's time axis.
func TimeSlots(startHour, endHour int) []int {
	var slots []int
	for h := startHour; h < endHour; h++ {
		slots = append(slots, h)
	}
	return slots
}
