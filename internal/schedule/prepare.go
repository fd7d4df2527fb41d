package schedule

import "sort"

// FilterByGroup keeps lessons that apply to groupID: untagged lessons pass,
// as do exact matches and membership in a multi-group tag. Input order is
// preserved. An empty groupID keeps everything (the cohort axis is already
// encoded in the fetch path for some store layouts).
func FilterByGroup(lessons []Lesson, groupID string) []Lesson {
	if groupID == "" {
		return lessons
	}
	out := make([]Lesson, 0, len(lessons))
	for _, l := range lessons {
		if len(l.Groups) == 0 {
			out = append(out, l)
			continue
		}
		for _, g := range l.Groups {
			if g == groupID {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// SortLessons orders lessons by pair number, then by start time compared as
// raw text. Records without an order sort as 0, i.e. first among ties; that
// matches what the store data has always relied on. The sort is stable so
// fully equal keys keep their input order.
//
// The text comparison of StartTime is only chronological when times are
// zero-padded "HH:MM"; the engine does not re-parse or validate the format.
func SortLessons(lessons []Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		if lessons[i].Order != lessons[j].Order {
			return lessons[i].Order < lessons[j].Order
		}
		return lessons[i].StartTime < lessons[j].StartTime
	})
}
