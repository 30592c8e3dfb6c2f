// Package render normalizes the free-text course fields for display. The
// extraction model is asked for prose but sometimes returns JSON arrays, so
// every field is parsed defensively: a well-formed JSON array is rendered
// losslessly, anything else goes through a clause-splitting heuristic.
package render

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Source tags how a field value was interpreted.
type Source string

const (
	// SourceStructured means the stored value parsed as a JSON array.
	SourceStructured Source = "structured"
	// SourceFreeText means the value was split heuristically from prose.
	SourceFreeText Source = "freetext"
)

// Line is one displayable item of a normalized field. For assessment lines
// Weight holds the percentage token ("25%") and Note any text after it;
// plain lines carry only Label.
type Line struct {
	Label  string `json:"label"`
	Weight string `json:"weight,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Field is the normalized view of one free-text course field.
type Field struct {
	Source Source `json:"source"`
	Lines  []Line `json:"lines"`
}

// splitKeywords are graded-item words that, after a comma, mark the start
// of a new line item even without capitalization.
var splitKeywords = []string{
	"Midterm", "Final", "Quiz", "Lab", "Homework", "Assignment", "Project", "Exam", "Test",
}

var rePercent = regexp.MustCompile(`\d+%`)

type assessmentEntry struct {
	Name          string   `json:"name"`
	Notes         string   `json:"notes"`
	WeightPercent *float64 `json:"weightPercent"`
}

// Assessment normalizes the grading-breakdown field.
func Assessment(raw string) Field {
	if entries, ok := parseJSONArray[assessmentEntry](raw); ok {
		lines := make([]Line, 0, len(entries))
		for _, e := range entries {
			l := Line{Label: e.Name, Note: e.Notes}
			if e.WeightPercent != nil {
				l.Weight = trimFloat(*e.WeightPercent) + "%"
			}
			lines = append(lines, l)
		}
		return Field{Source: SourceStructured, Lines: lines}
	}

	fragments := splitLineItems(raw)
	lines := make([]Line, 0, len(fragments))
	for _, frag := range fragments {
		lines = append(lines, assessmentLine(frag))
	}
	return Field{Source: SourceFreeText, Lines: lines}
}

type examEntry struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// ExamDates normalizes the exam-dates field.
func ExamDates(raw string) Field {
	if entries, ok := parseJSONArray[examEntry](raw); ok {
		lines := make([]Line, 0, len(entries))
		for _, e := range entries {
			detail := joinNonEmpty([]string{e.Date, e.Time, e.Location}, ", ")
			lines = append(lines, Line{Label: e.Name, Note: detail})
		}
		return Field{Source: SourceStructured, Lines: lines}
	}

	fragments := splitLineItems(raw)
	lines := make([]Line, 0, len(fragments))
	for _, frag := range fragments {
		lines = append(lines, Line{Label: frag})
	}
	return Field{Source: SourceFreeText, Lines: lines}
}

// Materials normalizes the materials field. Unlike assessment and exam
// dates there is no splitting heuristic: a JSON array becomes a list and
// anything else stays one paragraph.
func Materials(raw string) Field {
	if entries, ok := parseJSONArray[string](raw); ok {
		lines := make([]Line, 0, len(entries))
		for _, e := range entries {
			if s := strings.TrimSpace(e); s != "" {
				lines = append(lines, Line{Label: s})
			}
		}
		return Field{Source: SourceStructured, Lines: lines}
	}
	if s := strings.TrimSpace(raw); s != "" {
		return Field{Source: SourceFreeText, Lines: []Line{{Label: s}}}
	}
	return Field{Source: SourceFreeText, Lines: nil}
}

// parseJSONArray attempts the lossless path: the raw value must be a JSON
// array of T. Any other JSON value (object, string, number) falls through
// to the heuristic path.
func parseJSONArray[T any](raw string) ([]T, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var entries []T
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// splitLineItems breaks prose into candidate line items: runs of
// period/semicolon/newline end an item, and a comma ends an item when
// followed by an uppercase letter or a graded-item keyword. All delimiters
// are suppressed inside parentheses so notes like "(covers ch. 1, 2)" stay
// attached to their item. Fragments are trimmed and empties dropped.
func splitLineItems(s string) []string {
	var items []string
	var cur strings.Builder
	depth := 0

	flush := func() {
		if frag := strings.TrimSpace(cur.String()); frag != "" {
			items = append(items, frag)
		}
		cur.Reset()
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case depth == 0 && (r == '.' || r == ';' || r == '\n'):
			flush()
			for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == ';' || runes[i+1] == '\n') {
				i++
			}
		case depth == 0 && r == ',':
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if j < len(runes) && startsNewItem(string(runes[j:])) {
				flush()
				i = j - 1
			} else {
				cur.WriteRune(r)
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return items
}

func startsNewItem(rest string) bool {
	r := []rune(rest)[0]
	if unicode.IsUpper(r) {
		return true
	}
	for _, kw := range splitKeywords {
		if len(rest) >= len(kw) && strings.EqualFold(rest[:len(kw)], kw) {
			return true
		}
	}
	return false
}

// assessmentLine extracts the weight from one fragment. The last
// percentage-like token wins, not the first, because explanatory text may
// itself contain numbers before the actual weight.
func assessmentLine(frag string) Line {
	locs := rePercent.FindAllStringIndex(frag, -1)
	if len(locs) == 0 {
		return Line{Label: frag}
	}
	last := locs[len(locs)-1]

	label := strings.TrimSpace(frag[:last[0]])
	label = strings.TrimRight(label, ":( \t")
	note := strings.TrimSpace(frag[last[1]:])
	note = strings.TrimLeft(note, ") \t")

	return Line{
		Label:  strings.TrimSpace(label),
		Weight: frag[last[0]:last[1]],
		Note:   strings.TrimSpace(note),
	}
}

func joinNonEmpty(parts []string, sep string) string {
	var keep []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			keep = append(keep, s)
		}
	}
	return strings.Join(keep, sep)
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
