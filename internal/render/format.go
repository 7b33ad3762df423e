package render

import "time"

// FormatTime renders a clock time in the given timezone, honoring the
// 12h/24h setting.
func FormatTime(t time.Time, loc *time.Location, timeFormat string) string {
	if loc != nil {
		t = t.In(loc)
	}
	if timeFormat == "12h" {
		return t.Format("3:04 PM")
	}
	return t.Format("15:04")
}

// FormatTimeRange renders "start-end", e.g. "9:00-17:00" or
// "9:00 AM-5:00 PM".
func FormatTimeRange(start, end time.Time, loc *time.Location, timeFormat string) string {
	return FormatTime(start, loc, timeFormat) + "-" + FormatTime(end, loc, timeFormat)
}

// FormatDayOfWeek renders the short weekday label, e.g. "Mon".
func FormatDayOfWeek(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("Mon")
}

// FormatHour renders an hour-of-day label for the week grid's time axis.
func FormatHour(hour int, timeFormat string) string {
	t := time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC)
	return FormatTime(t, nil, timeFormat)
}
