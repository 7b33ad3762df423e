package extract

import (
	"shiftcal/internal/model"
)

// defaultPalette is cycled through as new people are first seen during an
// import.
var defaultPalette = []string{
	"#3b82f6", "#ef4444", "#10b981", "#f59e0b",
	"#8b5cf6", "#ec4899", "#14b8a6", "#f97316",
	"#06b6d4", "#84cc16", "#f43f5e", "#0d9488",
}

// Registry is the per-session person mapping, keyed by extracted name. It is
// rebuilt wholesale on every import and passed explicitly through the
// pipeline; it is never a process-wide singleton and never persisted.
type Registry map[string]model.Person

// BuildRegistry scans every occurrence's summary and registers each distinct
// extracted name as a Person with a first-seen palette color. Identical names
// resolve to the same Person; the id is a pure function of the normalized
// name.
func BuildRegistry(occurrences []model.RawOccurrence) Registry {
	reg := make(Registry)
	colorIndex := 0

	for _, occ := range occurrences {
		ex := PeopleAndTitle(occ.Summary)
		for _, name := range ex.Names {
			if _, ok := reg[name]; ok {
				continue
			}
			reg[name] = model.Person{
				ID:    PersonID(name),
				Name:  name,
				Color: defaultPalette[colorIndex%len(defaultPalette)],
			}
			colorIndex++
		}
	}

	return reg
}
