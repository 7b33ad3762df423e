// Package extract pulls structured person/shift-title information out of
// free-text event summaries like "John Doe - Morning Shift" or
// "Morning Shift: Jane Smith, John Doe". It is a best-effort heuristic
// parser, not a grammar.
package extract

import (
	"regexp"
	"strings"
)

// Extracted is the result of splitting one summary.
type Extracted struct {
	Names []string
	Title string
}

// splitRule is one candidate way of cutting a summary into two sides.
// Rules are tried in order; the first one producing a confident split wins.
type splitRule struct {
	name string
	re   *regexp.Regexp
}

var splitRules = []splitRule{
	// "Name - Shift" or "Name - Title"
	{"dash", regexp.MustCompile(`^([^-\n]+)\s*-\s*(.+)$`)},
	// "Title: Name1, Name2, ..."
	{"colon", regexp.MustCompile(`^(.+?):\s*(.+)$`)},
	// "Name1, Name2, Name3 (Title/Time)"
	{"paren", regexp.MustCompile(`^(.+?)\s*\((.+?)\)$`)},
}

// titleKeywords mark a summary side as shift-related rather than a person
// name.
var titleKeywords = []string{
	"shift", "break", "lunch", "meeting", "standby", "on-call",
	"training", "holiday", "vacation", "sick", "personal",
	"day", "night", "morning", "afternoon", "evening",
}

var (
	nameDelimRe     = regexp.MustCompile(`[,&;/]|\band\s+`)
	parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	fullParenRe     = regexp.MustCompile(`^\(.*\)$`)
	clockTimeRe     = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\b.*$`)
	upperStartRe    = regexp.MustCompile(`^[A-Z]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	nonSlugRe       = regexp.MustCompile(`[^a-z0-9\s]`)
)

// PeopleAndTitle splits a summary into person names and a shift title.
//
// Each split rule is evaluated in order. On a match, whichever side looks
// names-like yields the names and the other becomes the title; if neither
// side is confidently names-like but the first side tokenizes into names,
// that split is accepted anyway. When no rule produces a split, the whole
// summary is tokenized as a names list, and failing that it becomes the
// title with no names.
func PeopleAndTitle(summary string) Extracted {
	var names []string
	title := summary

	for _, rule := range splitRules {
		m := rule.re.FindStringSubmatch(summary)
		if m == nil {
			continue
		}
		part1, part2 := m[1], m[2]

		if looksLikeName(part1) {
			names = ParseNames(part1)
			title = part2
			break
		}
		if looksLikeName(part2) {
			title = part1
			names = ParseNames(part2)
			break
		}
		// Neither side is confidently names-like; accept the split if the
		// first side still tokenizes into names.
		if parsed := ParseNames(part1); len(parsed) > 0 {
			names = parsed
			title = part2
			break
		}
	}

	// No rule yielded names: try the whole summary as a names list, else
	// the summary is all title.
	if len(names) == 0 {
		names = ParseNames(summary)
		if len(names) == 0 {
			title = summary
		}
	}

	title = strings.TrimSpace(title)
	title = strings.TrimSpace(strings.TrimPrefix(title, "-"))
	title = strings.TrimSpace(strings.TrimSuffix(title, "-"))

	return Extracted{Names: names, Title: title}
}

// looksLikeName reports whether a summary side plausibly holds person names:
// it must contain no shift-related keyword, and either contain a comma or
// start with an uppercase letter while containing whitespace.
func looksLikeName(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range titleKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}

	if strings.Contains(text, ",") {
		return true
	}
	return upperStartRe.MatchString(text) && whitespaceRe.MatchString(text)
}

// ParseNames tokenizes a string into individual person names. Splits on
// ',', '&', ';', '/' and the word "and"; strips parenthetical substrings and
// trailing clock times; drops empty, over-length and keyword-bearing tokens.
func ParseNames(text string) []string {
	if text == "" {
		return nil
	}

	var names []string
	for _, raw := range nameDelimRe.Split(text, -1) {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if strings.Contains(lower, "shift") || strings.Contains(lower, "break") {
			continue
		}
		if fullParenRe.MatchString(name) {
			continue
		}

		name = parentheticalRe.ReplaceAllString(name, " ")
		name = clockTimeRe.ReplaceAllString(name, "")
		name = strings.TrimSpace(name)

		if len(name) > 0 && len(name) < 100 {
			names = append(names, name)
		}
	}

	return names
}

// PersonID derives the deterministic slug identifying a person: lowercased,
// trimmed, non-alphanumerics stripped, whitespace runs collapsed to single
// underscores. Total over any input; identical names always collide.
func PersonID(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlugRe.ReplaceAllString(s, "")
	return whitespaceRe.ReplaceAllString(s, "_")
}
