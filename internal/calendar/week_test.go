package calendar

import (
	"reflect"
	"testing"
	"time"

	"shiftcal/internal/model"
)

func mkMerged(title string, start, end time.Time, people string) model.MergedShift {
	return model.MergedShift{
		ShiftKey: model.Key(start, end, title),
		Shift: model.Shift{
			ID:    model.Key(start, end, title),
			Title: title,
			Start: start,
			End:   end,
		},
		PeopleList: people,
	}
}

func TestStartOfWeek(t *testing.T) {
	// 2026-09-09 is a Wednesday; its week starts Sunday 2026-09-06.
	wed := time.Date(2026, time.September, 9, 15, 30, 0, 0, time.UTC)
	got := StartOfWeek(wed)
	want := time.Date(2026, time.September, 6, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfWeek(wed) = %v, want %v", got, want)
	}

	// A Sunday is its own week start.
	sun := time.Date(2026, time.September, 6, 23, 59, 0, 0, time.UTC)
	if got := StartOfWeek(sun); !got.Equal(want) {
		t.Errorf("StartOfWeek(sun) = %v, want %v", got, want)
	}
}

func TestBuildWeek(t *testing.T) {
	now := time.Date(2026, time.September, 9, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC)

	merged := []model.MergedShift{
		mkMerged("Morning Shift", monday, monday.Add(8*time.Hour), "John Doe"),
		mkMerged("Evening Shift", monday.Add(8*time.Hour), monday.Add(16*time.Hour), "Jane Smith"),
		// Previous week, must not appear.
		mkMerged("Morning Shift", monday.AddDate(0, 0, -7), monday.AddDate(0, 0, -7).Add(8*time.Hour), "John Doe"),
	}

	days := BuildWeek(now, merged, now)
	if len(days) != 7 {
		t.Fatalf("day count = %d", len(days))
	}

	if days[0].Date.Weekday() != time.Sunday {
		t.Errorf("week starts on %v, want Sunday", days[0].Date.Weekday())
	}
	if !days[0].IsWeekend || days[1].IsWeekend || !days[6].IsWeekend {
		t.Error("weekend flags wrong")
	}

	// Monday is index 1 and carries both shifts.
	if len(days[1].Shifts) != 2 {
		t.Fatalf("monday shifts = %d, want 2", len(days[1].Shifts))
	}
	for i, day := range days {
		if i == 1 {
			continue
		}
		if len(day.Shifts) != 0 {
			t.Errorf("day[%d] has %d shifts, want 0", i, len(day.Shifts))
		}
	}

	// Wednesday (the now anchor) is today.
	for i, day := range days {
		wantToday := i == 3
		if day.IsToday != wantToday {
			t.Errorf("day[%d] IsToday = %v, want %v", i, day.IsToday, wantToday)
		}
	}
}

func TestDetectTimeRange(t *testing.T) {
	start := time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC)
	days := []model.CalendarDay{
		{Shifts: []model.MergedShift{
			mkMerged("Day Shift", start, start.Add(8*time.Hour), "John Doe"),
		}},
	}

	startHour, endHour, ok := DetectTimeRange(days)
	if !ok {
		t.Fatal("ok = false with shifts present")
	}
	if startHour != 8 || endHour != 18 {
		t.Errorf("range = %d..%d, want 8..18 (9-17 padded)", startHour, endHour)
	}
}

func TestDetectTimeRangeClamps(t *testing.T) {
	start := time.Date(2026, time.September, 7, 0, 30, 0, 0, time.UTC)
	days := []model.CalendarDay{
		{Shifts: []model.MergedShift{
			mkMerged("Night Shift", start, start.Add(23*time.Hour), "Jane Smith"),
		}},
	}

	startHour, endHour, ok := DetectTimeRange(days)
	if !ok {
		t.Fatal("ok = false")
	}
	if startHour != 0 || endHour != 24 {
		t.Errorf("range = %d..%d, want clamped 0..24", startHour, endHour)
	}
}

func TestDetectTimeRangeEmpty(t *testing.T) {
	if _, _, ok := DetectTimeRange([]model.CalendarDay{{}, {}}); ok {
		t.Error("ok = true with no shifts")
	}
}

func TestTimeSlots(t *testing.T) {
	got := TimeSlots(8, 12)
	want := []int{8, 9, 10, 11}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TimeSlots(8, 12) = %v, want %v", got, want)
	}
	if TimeSlots(8, 8) != nil {
		t.Error("empty range should yield nil")
	}
}
