package schedule

import (
	"context"
	"sync"

	"campusbot/internal/calendar"
	logx "campusbot/pkg/logx"
)

// WeekSource retrieves raw lesson records; implemented by store.Adapter.
// Implementations convert not-found and transient store failures to empty
// results, so these calls never fail a query.
type WeekSource interface {
	FetchDay(ctx context.Context, universityID, groupID string, p calendar.Parity, slot int) []Lesson
	FetchWeek(ctx context.Context, universityID, groupID string, p calendar.Parity) map[int][]Lesson
}

// ConfigSource supplies the university's week-numbering anchor.
type ConfigSource interface {
	CalendarConfig(ctx context.Context, universityID string) (calendar.Config, error)
}

// Resolver answers the three timetable questions: one day, today+tomorrow,
// and the full week. It is stateless; every call re-reads the university's
// calendar config so anchor changes take effect immediately.
type Resolver struct {
	source  WeekSource
	configs ConfigSource
	log     logx.Logger
}

func NewResolver(source WeekSource, configs ConfigSource, log logx.Logger) *Resolver {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Resolver{source: source, configs: configs, log: log}
}

func (r *Resolver) calendarConfig(ctx context.Context, universityID string) calendar.Config {
	cfg, err := r.configs.CalendarConfig(ctx, universityID)
	if err != nil {
		// Fall back to defaults (Jan 1 anchor, first parity) and keep going.
		r.log.Warn("calendar config unavailable; using defaults",
			logx.Err(err), logx.String("university", universityID))
		return calendar.Config{}
	}
	return cfg
}

// ResolveDay resolves the timetable for q.Date.
//
// A query without university or group yields an empty result and
// ErrProfileIncomplete; the result is still valid to render.
func (r *Resolver) ResolveDay(ctx context.Context, q Query) (Result, error) {
	res := Result{Date: q.Date, Slot: calendar.Slot(q.Date)}
	if q.UniversityID == "" || q.GroupID == "" {
		r.log.Warn("query without university or group; returning empty day")
		return res, ErrProfileIncomplete
	}

	cfg := r.calendarConfig(ctx, q.UniversityID)
	res.Parity = calendar.ComputeParity(q.Date, cfg)

	lessons := r.source.FetchDay(ctx, q.UniversityID, q.GroupID, res.Parity, res.Slot)
	res.Lessons = prepare(lessons, q.GroupID)
	return res, nil
}

// ResolveTodayTomorrow resolves q.Date and the following calendar day.
//
// When both days land in the same parity week the week is fetched once and
// both days are picked out of it; otherwise the two days are fetched
// concurrently. Either way the results are identical to two ResolveDay calls.
func (r *Resolver) ResolveTodayTomorrow(ctx context.Context, q Query) (Result, Result, error) {
	tomorrow := q.Date.AddDate(0, 0, 1)

	today := Result{Date: q.Date, Slot: calendar.Slot(q.Date)}
	next := Result{Date: tomorrow, Slot: calendar.Slot(tomorrow)}

	if q.UniversityID == "" || q.GroupID == "" {
		r.log.Warn("query without university or group; returning empty days")
		return today, next, ErrProfileIncomplete
	}

	cfg := r.calendarConfig(ctx, q.UniversityID)
	today.Parity = calendar.ComputeParity(q.Date, cfg)
	next.Parity = calendar.ComputeParity(tomorrow, cfg)

	if today.Parity == next.Parity {
		week := r.source.FetchWeek(ctx, q.UniversityID, q.GroupID, today.Parity)
		today.Lessons = prepare(week[today.Slot], q.GroupID)
		next.Lessons = prepare(week[next.Slot], q.GroupID)
		return today, next, nil
	}

	// Parity boundary (Sunday into Monday): two independent fetches.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		today.Lessons = prepare(
			r.source.FetchDay(ctx, q.UniversityID, q.GroupID, today.Parity, today.Slot), q.GroupID)
	}()
	go func() {
		defer wg.Done()
		next.Lessons = prepare(
			r.source.FetchDay(ctx, q.UniversityID, q.GroupID, next.Parity, next.Slot), q.GroupID)
	}()
	wg.Wait()

	return today, next, nil
}

// ResolveFullWeek resolves all seven days of the parity week containing
// q.Date. Every slot 1..7 is present in the map; days with nothing left
// after filtering keep an empty lesson list (hiding them is the renderer's
// call, not ours).
func (r *Resolver) ResolveFullWeek(ctx context.Context, q Query) (map[int]Result, error) {
	out := make(map[int]Result, 7)
	monday := q.Date.AddDate(0, 0, 1-calendar.Slot(q.Date))

	if q.UniversityID == "" || q.GroupID == "" {
		r.log.Warn("query without university or group; returning empty week")
		for slot := 1; slot <= 7; slot++ {
			out[slot] = Result{Date: monday.AddDate(0, 0, slot-1), Slot: slot}
		}
		return out, ErrProfileIncomplete
	}

	cfg := r.calendarConfig(ctx, q.UniversityID)
	parity := calendar.ComputeParity(q.Date, cfg)

	week := r.source.FetchWeek(ctx, q.UniversityID, q.GroupID, parity)
	for slot := 1; slot <= 7; slot++ {
		out[slot] = Result{
			Date:    monday.AddDate(0, 0, slot-1),
			Slot:    slot,
			Parity:  parity,
			Lessons: prepare(week[slot], q.GroupID),
		}
	}
	return out, nil
}

func prepare(lessons []Lesson, groupID string) []Lesson {
	kept := FilterByGroup(lessons, groupID)
	SortLessons(kept)
	return kept
}
