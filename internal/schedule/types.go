package schedule

import (
	"errors"
	"time"

	"campusbot/internal/calendar"
)

// ErrProfileIncomplete means the viewer has no university/group on their
// profile yet. It is an expected condition (first run, half-provisioned
// account); callers render an empty result instead of failing.
var ErrProfileIncomplete = errors.New("profile has no university or group")

// Lesson is one timetable entry as read from the document store.
// Immutable once fetched.
type Lesson struct {
	// Order is the pair number within the day; 0 when the record
	// doesn't carry one.
	Order int

	// StartTime/EndTime are pre-formatted "HH:MM" strings. They are
	// compared as text, never parsed, when ordering lessons.
	StartTime string
	EndTime   string

	Subject string
	Room    string
	Teacher string
	Note    string

	// Groups lists the student groups the lesson applies to.
	// Empty means "everyone under this day".
	Groups []string
}

// Query identifies what to resolve. A plain value object.
type Query struct {
	UniversityID string
	GroupID      string
	Date         time.Time
}

// Result is one resolved day.
type Result struct {
	Date    time.Time
	Slot    int // canonical weekday slot, Monday=1 .. Sunday=7
	Parity  calendar.Parity
	Lessons []Lesson
}
