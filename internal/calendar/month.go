package calendar

import (
	"sort"
	"time"

	"shiftcal/internal/model"
)

// BuildMonth returns every Sunday-start week overlapping the given month,
// including lead and trail days from adjacent months. Each day's shifts are
// sorted by start time, then end time, then people list; that order controls
// vertical stacking in the printed month grid. now determines IsToday, loc
// the calendar framing.
func BuildMonth(year int, month time.Month, merged []model.MergedShift, now time.Time, loc *time.Location) []model.CalendarWeek {
	if loc == nil {
		loc = time.Local
	}

	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	lastDay := firstDay.AddDate(0, 1, -1)

	firstWeek := StartOfWeek(firstDay)
	lastWeek := StartOfWeek(lastDay)

	var weeks []model.CalendarWeek
	weekNumber := 1
	for weekStart := firstWeek; !weekStart.After(lastWeek); weekStart = weekStart.AddDate(0, 0, 7) {
		days := make([]model.CalendarDay, 7)
		for i := range days {
			days[i] = buildDay(weekStart.AddDate(0, 0, i), merged, now, true)
		}
		weeks = append(weeks, model.CalendarWeek{
			WeekNumber: weekNumber,
			Days:       days,
		})
		weekNumber++
	}

	return weeks
}

// sortDayShifts orders a day's shifts by (start, end, people list). The
// comparison is significant: it fixes the vertical stacking order of the
// month grid cells.
func sortDayShifts(shifts []model.MergedShift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		a, b := shifts[i], shifts[j]
		if !a.Shift.Start.Equal(b.Shift.Start) {
			return a.Shift.Start.Before(b.Shift.Start)
		}
		if !a.Shift.End.Equal(b.Shift.End) {
			return a.Shift.End.Before(b.Shift.End)
		}
		return a.PeopleList < b.PeopleList
	})
}
