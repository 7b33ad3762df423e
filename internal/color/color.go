// Package color centralizes color resolution for people and shifts.
// Priority order everywhere: caller override map > person.ColorOverride >
// person.Color.
package color

import (
	"fmt"
	"strconv"
	"strings"

	"shiftcal/internal/model"
)

// Unassigned is the neutral gray used for shifts with no people.
const Unassigned = "#d1d5db"

// PersonColor resolves a person's effective color against the caller-owned
// override map (keyed by person name).
func PersonColor(p model.Person, assignments map[string]string) string {
	if c, ok := assignments[p.Name]; ok && c != "" {
		return c
	}
	if p.ColorOverride != "" {
		return p.ColorOverride
	}
	return p.Color
}

// ShiftColor resolves a shift's display color from its first person, or gray
// when unassigned.
func ShiftColor(s model.Shift, assignments map[string]string) string {
	if len(s.People) == 0 {
		return Unassigned
	}
	return PersonColor(s.People[0], assignments)
}

// ShiftColors returns the distinct resolved colors of a shift's people, in
// first-seen order.
func ShiftColors(s model.Shift, assignments map[string]string) []string {
	var colors []string
	seen := make(map[string]struct{})
	for _, p := range s.People {
		c := PersonColor(p, assignments)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		colors = append(colors, c)
	}
	return colors
}

// GradientStop is one color stop of an evenly-spaced linear gradient.
type GradientStop struct {
	Color   string
	Percent float64
}

// GradientStops spreads the given colors evenly across 0-100%.
func GradientStops(colors []string) []GradientStop {
	stops := make([]GradientStop, len(colors))
	for i, c := range colors {
		var pct float64
		if len(colors) > 1 {
			pct = float64(i) / float64(len(colors)-1) * 100
		}
		stops[i] = GradientStop{Color: c, Percent: pct}
	}
	return stops
}

// ShiftBackground builds the CSS background for a shift block: a solid fill
// for zero-or-one distinct colors, a 135deg linear gradient otherwise.
func ShiftBackground(s model.Shift, assignments map[string]string, defaultColor string) string {
	if len(s.People) <= 1 {
		return "background-color: " + defaultColor
	}

	colors := ShiftColors(s, assignments)
	if len(colors) == 1 {
		return "background-color: " + colors[0]
	}

	parts := make([]string, len(colors))
	for i, stop := range GradientStops(colors) {
		parts[i] = fmt.Sprintf("%s %g%%", stop.Color, stop.Percent)
	}
	return "background: linear-gradient(135deg, " + strings.Join(parts, ", ") + ")"
}

// ContrastTextColor picks dark or light text from the perceptual luminance of
// the background hex: (0.299r + 0.587g + 0.114b)/255, dark text above 0.5.
func ContrastTextColor(bg string) string {
	r, g, b, ok := parseHex(bg)
	if !ok {
		return "#000000"
	}
	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	if luminance > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

func parseHex(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
