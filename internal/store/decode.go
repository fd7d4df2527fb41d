package store

import (
	"campusbot/internal/schedule"
)

// decodeLessons pulls the embedded lessons array out of a day document.
// Documents without one decode to an empty slice.
func decodeLessons(doc map[string]any) []schedule.Lesson {
	if doc == nil {
		return nil
	}
	raw, ok := doc["lessons"].([]any)
	if !ok {
		return nil
	}
	out := make([]schedule.Lesson, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, decodeLesson(m))
	}
	return out
}

// decodeLesson tolerates both field spellings the store has accumulated:
// camelCase from the newer writers and snake_case from the oldest importer,
// plus "pairNumber" as a legacy alias of "order" and "title" for "subject".
func decodeLesson(m map[string]any) schedule.Lesson {
	l := schedule.Lesson{
		StartTime: str(m, "startTime", "start_time"),
		EndTime:   str(m, "endTime", "end_time"),
		Subject:   str(m, "subject", "title"),
		Room:      str(m, "room"),
		Teacher:   str(m, "teacher"),
		Note:      str(m, "note"),
	}

	if n, ok := num(m, "order"); ok {
		l.Order = n
	} else if n, ok := num(m, "pairNumber"); ok {
		l.Order = n
	}

	switch g := m["group"].(type) {
	case string:
		if g != "" {
			l.Groups = []string{g}
		}
	case []any:
		for _, v := range g {
			if s, ok := v.(string); ok && s != "" {
				l.Groups = append(l.Groups, s)
			}
		}
	}

	return l
}

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func num(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		// JSON numbers decode as float64.
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}
