package router

import (
	"fmt"
	"strings"

	"campusbot/internal/calendar"
	"campusbot/internal/schedule"
	"campusbot/pkg/tgui"
)

var weekdayTitles = [8]string{
	"",
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func parityLabel(p calendar.Parity) string {
	switch p {
	case calendar.First:
		return "first week"
	case calendar.Second:
		return "second week"
	default:
		return ""
	}
}

func helpText() tgui.H {
	lines := []tgui.H{
		tgui.B("CampusBot"),
		tgui.Esc("Your class timetable, straight from the university schedule."),
		"",
		tgui.Esc("/bind <student id> — link this chat to your profile"),
		tgui.Esc("/today — today's classes"),
		tgui.Esc("/tomorrow — tomorrow's classes"),
		tgui.Esc("/week — the whole current week"),
		tgui.Esc("/export — the week as an .ics calendar file"),
		tgui.Esc("/subscribe — tomorrow's classes every evening"),
	}
	return tgui.JoinH("\n", lines...)
}

func profileIncompleteText() tgui.H {
	return tgui.Esc("Your profile has no university or group yet, so there's no timetable to show. Fill them in and try again.")
}

// FormatDay renders one resolved day:
//
//	Monday, 02.09 (first week)
//	1. 09:00-10:30  Math, room 215, A. Ivanov
func FormatDay(res schedule.Result) tgui.H {
	header := fmt.Sprintf("%s, %s", weekdayTitles[res.Slot], res.Date.Format("02.01"))
	if label := parityLabel(res.Parity); label != "" {
		header += " (" + label + ")"
	}

	parts := []tgui.H{tgui.B(header)}
	if len(res.Lessons) == 0 {
		parts = append(parts, tgui.I("No classes on this day."))
		return tgui.JoinH("\n", parts...)
	}
	for _, l := range res.Lessons {
		parts = append(parts, formatLesson(l))
		if l.Note != "" {
			parts = append(parts, tgui.I("   "+l.Note))
		}
	}
	return tgui.JoinH("\n", parts...)
}

func formatLesson(l schedule.Lesson) tgui.H {
	var b []tgui.H

	prefix := ""
	if l.Order > 0 {
		prefix = fmt.Sprintf("%d. ", l.Order)
	}
	span := ""
	switch {
	case l.StartTime != "" && l.EndTime != "":
		span = l.StartTime + "–" + l.EndTime + "  "
	case l.StartTime != "":
		span = l.StartTime + "  "
	}
	b = append(b, tgui.Esc(prefix+span), tgui.B(l.Subject))

	var meta []string
	if l.Room != "" {
		meta = append(meta, l.Room)
	}
	if l.Teacher != "" {
		meta = append(meta, l.Teacher)
	}
	if len(meta) > 0 {
		b = append(b, tgui.Esc(" — "+strings.Join(meta, ", ")))
	}

	return tgui.JoinH("", b...)
}

// formatWeek renders the full week, skipping empty days entirely (the
// resolver keeps them; this renderer chooses to hide them).
func formatWeek(week map[int]schedule.Result) tgui.H {
	var parts []tgui.H
	for slot := 1; slot <= 7; slot++ {
		res, ok := week[slot]
		if !ok || len(res.Lessons) == 0 {
			continue
		}
		parts = append(parts, FormatDay(res))
	}
	if len(parts) == 0 {
		return tgui.Esc("No classes this week.")
	}
	return tgui.JoinH("\n\n", parts...)
}
