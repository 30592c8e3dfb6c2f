package llm

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"name":"x"}`, `{"name":"x"}`},
		{"json fence", "```json\n{\"name\":\"x\"}\n```", `{"name":"x"}`},
		{"bare fence", "```\n{\"name\":\"x\"}\n```", `{"name":"x"}`},
		{"fence with padding", "  ```json\n{\"name\":\"x\"}\n```  ", `{"name":"x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFences(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeDropsUnknownKeys(t *testing.T) {
	raw := []byte(`{"name":"CS 101","gradeScale":"A-F","sections":[]}`)

	out, dropped, err := NormalizeAndSanitizeJSON(raw, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Contains(dropped, "gradeScale(unknown)") {
		t.Errorf("dropped = %v, want gradeScale(unknown)", dropped)
	}
	if strings.Contains(string(out), "gradeScale") {
		t.Errorf("unknown key survived: %s", out)
	}
}

func TestNormalizeEmptyScalarsBecomeNull(t *testing.T) {
	raw := []byte(`{"name":"  CS 101  ","term":"   ","sections":[]}`)

	out, dropped, err := NormalizeAndSanitizeJSON(raw, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if m["name"] != "CS 101" {
		t.Errorf("name = %v, want trimmed value", m["name"])
	}
	if m["term"] != nil {
		t.Errorf("term = %v, want null", m["term"])
	}
	if !slices.Contains(dropped, "term(empty)") {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestNormalizeCoercesSections(t *testing.T) {
	raw := []byte(`{"name":"CS 101","sections":["oops",{"sectionCode":" L0101 ","instructor":"Dr. Smith","lectures":[{"dayOfWeek":"Monday","startTime":"10:00"},42]}]}`)

	out, dropped, err := NormalizeAndSanitizeJSON(raw, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var m struct {
		Sections []struct {
			SectionCode string `json:"sectionCode"`
			Lectures    []struct {
				DayOfWeek string `json:"dayOfWeek"`
			} `json:"lectures"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(m.Sections) != 1 {
		t.Fatalf("sections = %+v, want the string entry discarded", m.Sections)
	}
	if m.Sections[0].SectionCode != "L0101" {
		t.Errorf("sectionCode = %q, want trimmed", m.Sections[0].SectionCode)
	}
	if len(m.Sections[0].Lectures) != 1 {
		t.Errorf("lectures = %+v, want the numeric entry discarded", m.Sections[0].Lectures)
	}
	if !slices.Contains(dropped, "sections.entry(type)") || !slices.Contains(dropped, "lectures.entry(type)") {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestNormalizeMissingSectionsBecomesEmptyArray(t *testing.T) {
	out, _, err := NormalizeAndSanitizeJSON([]byte(`{"name":"CS 101"}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if arr, ok := m["sections"].([]any); !ok || len(arr) != 0 {
		t.Errorf("sections = %v, want []", m["sections"])
	}
}

func TestNormalizeNonJSONFails(t *testing.T) {
	if _, _, err := NormalizeAndSanitizeJSON([]byte("I could not read the document"), nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSanitizedOutputPassesSchema(t *testing.T) {
	raw := []byte("```json\n{\"name\":\"CS 101\",\"term\":\"Fall 2025\",\"extra\":true,\"sections\":[{\"sectionCode\":\"L0101\",\"instructor\":\"Dr. Smith\",\"lectures\":[{\"dayOfWeek\":\"Monday\",\"startTime\":\"10:00\",\"endTime\":\"11:00\",\"location\":\"BA 1190\"}]}]}\n```")

	out, _, err := NormalizeAndSanitizeJSON(raw, nil)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if err := ValidateJSONAgainstSchema(BuildCourseJSONSchema(), out); err != nil {
		t.Errorf("sanitized output rejected by schema: %v", err)
	}
}
