// Package render produces the printable HTML pages (month grid, week time
// grid) consumed by browsers and by the headless-Chromium capture. The root
// element carries data-ready="true" once rendered so capture knows when to
// shoot.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"shiftcal/internal/calendar"
	"shiftcal/internal/color"
	"shiftcal/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// hourHeight is the pixel height of one hour row in the week grid.
const hourHeight = 50

// layerOffset is the pixel nudge applied per stacking layer so stacked
// shifts stay distinguishable.
const layerOffset = 3

// Options fix the display settings for a Renderer.
type Options struct {
	Location    *time.Location
	TimeFormat  string // "12h" or "24h"
	PaperSize   string // "letter", "a4", "legal"
	Orientation string // "portrait", "landscape"
}

type Renderer struct {
	tmpl *template.Template
	opts Options
}

func New(opts Options) (*Renderer, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"mulHeight": func(i int) int { return i * hourHeight },
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

// pageSize maps the paper settings onto a CSS @page size declaration.
func (r *Renderer) pageSize() string {
	var size string
	switch r.opts.PaperSize {
	case "a4":
		size = "A4"
	case "legal":
		size = "legal"
	default:
		size = "letter"
	}
	if r.opts.Orientation == "landscape" {
		return size + " landscape"
	}
	return size + " portrait"
}

type monthShiftView struct {
	Title     string
	People    string
	TimeRange string
	Style     template.CSS
	TextColor string
}

type monthDayView struct {
	DayNumber int
	InMonth   bool
	IsToday   bool
	IsWeekend bool
	Shifts    []monthShiftView
}

type monthWeekView struct {
	Days []monthDayView
}

type monthPage struct {
	Label    string
	PageSize template.CSS
	DayNames []string
	Weeks    []monthWeekView
}

// Month writes the printable month grid for the given prebuilt weeks.
func (r *Renderer) Month(w io.Writer, year int, month time.Month, weeks []model.CalendarWeek, assignments map[string]string) error {
	page := monthPage{
		Label:    fmt.Sprintf("%s %d", month, year),
		PageSize: template.CSS(r.pageSize()),
		DayNames: []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	}

	for _, week := range weeks {
		var wv monthWeekView
		for _, day := range week.Days {
			dv := monthDayView{
				DayNumber: day.Date.Day(),
				InMonth:   day.Date.Month() == month,
				IsToday:   day.IsToday,
				IsWeekend: day.IsWeekend,
			}
			for _, ms := range day.Shifts {
				dv.Shifts = append(dv.Shifts, monthShiftView{
					Title:     ms.Shift.Title,
					People:    ms.PeopleList,
					TimeRange: FormatTimeRange(ms.Shift.Start, ms.Shift.End, r.opts.Location, r.opts.TimeFormat),
					Style:     template.CSS(color.ShiftBackground(ms.Shift, assignments, ms.DisplayColor)),
					TextColor: color.ContrastTextColor(ms.DisplayColor),
				})
			}
			wv.Days = append(wv.Days, dv)
		}
		page.Weeks = append(page.Weeks, wv)
	}

	return r.tmpl.ExecuteTemplate(w, "month.html.tmpl", page)
}

type weekBlockView struct {
	Top     int
	Height  int
	ZIndex  int
	Opacity string
	Align   string
	Style   template.CSS
	Border  string

	TextColor string
	Names     []string
	More      int
	TimeRange string
}

type weekDayView struct {
	Name      string
	DayNumber int
	IsToday   bool
	IsWeekend bool
	Blocks    []weekBlockView
}

type weekPage struct {
	Label      string
	PageSize   template.CSS
	Hours      []string
	HourHeight int
	BodyHeight int
	Days       []weekDayView
}

// Week writes the printable week time grid. Shifts sharing an exact time
// window within one day are folded into a single block with their people
// combined before positions are computed.
func (r *Renderer) Week(w io.Writer, days []model.CalendarDay, startHour, endHour int, assignments map[string]string) error {
	slots := calendar.TimeSlots(startHour, endHour)

	page := weekPage{
		PageSize:   template.CSS(r.pageSize()),
		HourHeight: hourHeight,
		BodyHeight: len(slots) * hourHeight,
	}
	if len(days) > 0 {
		page.Label = fmt.Sprintf("Week of %s", days[0].Date.Format("Jan 2, 2006"))
	}
	for _, h := range slots {
		page.Hours = append(page.Hours, FormatHour(h, r.opts.TimeFormat))
	}

	for _, day := range days {
		dv := weekDayView{
			Name:      FormatDayOfWeek(day.Date, r.opts.Location),
			DayNumber: day.Date.Day(),
			IsToday:   day.IsToday,
			IsWeekend: day.IsWeekend,
		}

		folded := foldSameWindow(day.Shifts)

		colorMap := make(map[string]string, len(folded))
		shifts := make([]model.Shift, 0, len(folded))
		for _, ms := range folded {
			colorMap[ms.Shift.ID] = ms.DisplayColor
			shifts = append(shifts, ms.Shift)
		}

		for _, pos := range calendar.Positions(shifts, startHour, colorMap) {
			names := make([]string, 0, len(pos.Shift.People))
			more := 0
			if len(pos.Shift.People) <= 3 {
				for _, p := range pos.Shift.People {
					names = append(names, p.Name)
				}
			} else {
				for _, p := range pos.Shift.People[:2] {
					names = append(names, p.Name)
				}
				more = len(pos.Shift.People) - 2
			}

			dv.Blocks = append(dv.Blocks, weekBlockView{
				Top:       int(math.Round(float64(pos.RowStart)/60*hourHeight)) + pos.IndexInGroup*layerOffset,
				Height:    int(math.Round(float64(pos.RowEnd-pos.RowStart) / 60 * hourHeight)),
				ZIndex:    pos.ZIndex,
				Opacity:   blockOpacity(pos.IndexInGroup),
				Align:     []string{"left", "center", "right"}[pos.IndexInGroup%3],
				Style:     template.CSS(color.ShiftBackground(pos.Shift, assignments, pos.DisplayColor)),
				Border:    pos.DisplayColor,
				TextColor: color.ContrastTextColor(pos.DisplayColor),
				Names:     names,
				More:      more,
				TimeRange: FormatTimeRange(pos.Shift.Start, pos.Shift.End, r.opts.Location, r.opts.TimeFormat),
			})
		}

		page.Days = append(page.Days, dv)
	}

	return r.tmpl.ExecuteTemplate(w, "week.html.tmpl", page)
}

// blockOpacity fades each stacking layer, floored at 0.2 so deep stacks stay
// visible and the value remains a valid CSS opacity.
func blockOpacity(idx int) string {
	o := 0.92 - float64(idx)*0.08
	if o < 0.2 {
		o = 0.2
	}
	return fmt.Sprintf("%.2f", o)
}

// foldSameWindow combines merged shifts with identical start/end instants
// into one entry with their people concatenated, so truly simultaneous
// shifts render as a single block instead of a fully hidden stack.
func foldSameWindow(shifts []model.MergedShift) []model.MergedShift {
	byWindow := make(map[string]int)
	var out []model.MergedShift

	for _, ms := range shifts {
		key := fmt.Sprintf("%d-%d", ms.Shift.Start.Unix(), ms.Shift.End.Unix())
		if i, ok := byWindow[key]; ok {
			existing := &out[i]
			existing.Shift.People = append(existing.Shift.People, ms.Shift.People...)
			existing.PeopleList = joinPeople(existing.Shift.People)
			continue
		}
		copied := ms
		copied.Shift.People = append([]model.Person(nil), ms.Shift.People...)
		byWindow[key] = len(out)
		out = append(out, copied)
	}

	return out
}

func joinPeople(people []model.Person) string {
	out := ""
	for i, p := range people {
		if i > 0 {
			out += ", "
		}
		out += p.Name
	}
	return out
}
