package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"campusbot/internal/schedule"
)

// Exporter renders a resolved week as an iCalendar document.
//
// Lessons recur weekly; WeekInterval 2 makes them recur every other week,
// which is what an alternating first/second timetable needs. The flat store
// layout has no parity axis, so its export uses interval 1.
type Exporter struct {
	// WeekInterval is the RRULE INTERVAL (1 or 2).
	WeekInterval int
	// Location is the timezone lesson times are interpreted in.
	Location *time.Location
}

// Lesson length to assume when a record has a start time but no end time.
const defaultLessonLength = 90 * time.Minute

func (e Exporter) ExportWeek(week map[int]schedule.Result, calendarName string) ([]byte, error) {
	interval := e.WeekInterval
	if interval <= 0 {
		interval = 1
	}
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}

	rule, err := rrule.NewRRule(rrule.ROption{Freq: rrule.WEEKLY, Interval: interval})
	if err != nil {
		return nil, fmt.Errorf("build recurrence rule: %w", err)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//campusbot//timetable//EN")
	if calendarName != "" {
		cal.SetXWRCalName(calendarName)
	}

	now := time.Now().UTC()
	for slot := 1; slot <= 7; slot++ {
		res, ok := week[slot]
		if !ok {
			continue
		}
		for _, l := range res.Lessons {
			ev := cal.AddEvent(uuid.NewString() + "@campusbot")
			ev.SetDtStampTime(now)
			ev.SetSummary(l.Subject)
			if l.Room != "" {
				ev.SetLocation(l.Room)
			}
			desc := l.Teacher
			if l.Note != "" {
				if desc != "" {
					desc += "\n"
				}
				desc += l.Note
			}
			if desc != "" {
				ev.SetDescription(desc)
			}

			start, startOK := atTime(res.Date, l.StartTime, loc)
			if !startOK {
				// No parseable start time: keep the lesson as an all-day entry.
				ev.SetAllDayStartAt(res.Date)
				ev.SetAllDayEndAt(res.Date.AddDate(0, 0, 1))
			} else {
				end, endOK := atTime(res.Date, l.EndTime, loc)
				if !endOK || !end.After(start) {
					end = start.Add(defaultLessonLength)
				}
				ev.SetStartAt(start)
				ev.SetEndAt(end)
			}
			ev.AddRrule(rule.String())
		}
	}

	return []byte(cal.Serialize()), nil
}

// atTime combines a date with an "HH:MM" wall-clock string.
func atTime(date time.Time, hhmm string, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), true
}
