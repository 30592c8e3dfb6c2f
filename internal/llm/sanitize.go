package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// NormalizeAndSanitizeJSON
// - Strips markdown code fences the model sometimes wraps JSON in
// - Drops null/empty section and lecture entries
// - Removes unknown keys (strict additionalProperties = false friendliness)
// - Trims obvious strings
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	content := StripCodeFences(string(raw))

	var m map[string]any
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)

	// 1) remove unknown top-level keys
	allowed := map[string]struct{}{
		"name": {}, "term": {}, "description": {}, "materials": {},
		"assessment": {}, "policies": {}, "examDates": {}, "sections": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// 2) trim scalar strings; empty string means the field is absent
	trimKeys := []string{"name", "term", "description", "materials", "assessment", "policies", "examDates"}
	for _, k := range trimKeys {
		if v, ok := m[k].(string); ok {
			s := strings.TrimSpace(v)
			if s == "" {
				m[k] = nil
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		}
	}

	// 3) sections must be an array of objects; anything else is discarded
	if v, ok := m["sections"]; ok {
		switch t := v.(type) {
		case []any:
			clean := make([]any, 0, len(t))
			for _, e := range t {
				if obj, ok := e.(map[string]any); ok {
					clean = append(clean, sanitizeSection(obj, &dropped))
				} else {
					dropped = append(dropped, "sections.entry(type)")
				}
			}
			m["sections"] = clean
		case nil:
			m["sections"] = []any{}
			dropped = append(dropped, "sections(null)")
		default:
			m["sections"] = []any{}
			dropped = append(dropped, "sections(type)")
		}
	} else {
		m["sections"] = []any{}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func sanitizeSection(obj map[string]any, dropped *[]string) map[string]any {
	out := map[string]any{}
	if v, ok := obj["sectionCode"].(string); ok {
		out["sectionCode"] = strings.TrimSpace(v)
	}
	if v, ok := obj["instructor"].(string); ok {
		out["instructor"] = strings.TrimSpace(v)
	}
	lectures := []any{}
	if v, ok := obj["lectures"].([]any); ok {
		for _, e := range v {
			lobj, ok := e.(map[string]any)
			if !ok {
				*dropped = append(*dropped, "lectures.entry(type)")
				continue
			}
			l := map[string]any{}
			for _, k := range []string{"dayOfWeek", "startTime", "endTime", "location"} {
				if s, ok := lobj[k].(string); ok {
					l[k] = strings.TrimSpace(s)
				}
			}
			lectures = append(lectures, l)
		}
	}
	out["lectures"] = lectures
	return out
}

// StripCodeFences removes a surrounding markdown fence (```json ... ```)
// if present and returns the trimmed inner content.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the language tag line ("json")
		first := strings.TrimSpace(s[:i])
		if first == "" || len(first) <= 8 && !strings.ContainsAny(first, "{[") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
