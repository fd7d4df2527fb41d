package store

import (
	"context"

	"campusbot/internal/calendar"
	"campusbot/internal/schedule"
	logx "campusbot/pkg/logx"
)

// Adapter retrieves lesson records for (university, group, parity, weekday)
// coordinates, hiding which of the three store layouts is live.
//
// A missing timetable entry is an expected state, not a fault: not-found and
// transient store errors both come back as empty slices, with the latter
// logged. Nothing here ever fails a query outright.
type Adapter struct {
	scheme Scheme
	store  Store
	log    logx.Logger
}

func NewAdapter(scheme Scheme, st Store, log logx.Logger) (*Adapter, error) {
	scheme, err := ParseScheme(string(scheme))
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{scheme: scheme, store: st, log: log}, nil
}

func (a *Adapter) Scheme() Scheme { return a.scheme }

// FetchDay returns the raw (unfiltered, unsorted) lessons for one day.
func (a *Adapter) FetchDay(ctx context.Context, universityID, groupID string, p calendar.Parity, slot int) []schedule.Lesson {
	key, err := DayKey(a.scheme, slot)
	if err != nil {
		// Unreachable for a validated adapter; keep the day empty rather than panic.
		a.log.Error("day key resolution failed", logx.Err(err), logx.Int("slot", slot))
		return nil
	}

	var path string
	switch a.scheme {
	case SchemeFlat:
		path = Path("universities", universityID, "timetable", key)
	case SchemeParityDay:
		path = Path("universities", universityID, "schedule_weeks", p.String()+"_"+key)
	case SchemeGroupTree:
		path = Path("universities", universityID, "schedule", groupID, p.String(), key)
	}

	doc, ok, err := a.store.GetDocument(ctx, path)
	if err != nil {
		a.log.Warn("day fetch failed", logx.Err(err), logx.String("path", path))
		return nil
	}
	if !ok {
		return nil
	}
	return decodeLessons(doc)
}

// FetchWeek returns raw lessons for every weekday slot of one parity week.
// Layouts with a listable week (parity-day, group-tree) are fetched in one
// listing; the flat layout needs seven individual gets.
func (a *Adapter) FetchWeek(ctx context.Context, universityID, groupID string, p calendar.Parity) map[int][]schedule.Lesson {
	week := make(map[int][]schedule.Lesson, 7)

	switch a.scheme {
	case SchemeFlat:
		for slot := 1; slot <= 7; slot++ {
			week[slot] = a.FetchDay(ctx, universityID, groupID, p, slot)
		}
		return week

	case SchemeParityDay:
		path := Path("universities", universityID, "schedule_weeks")
		entries, err := a.store.ListCollection(ctx, path)
		if err != nil {
			a.log.Warn("week fetch failed", logx.Err(err), logx.String("path", path))
			return week
		}
		prefix := p.String() + "_"
		for _, e := range entries {
			if len(e.Key) <= len(prefix) || e.Key[:len(prefix)] != prefix {
				continue
			}
			if slot := slotForKey(a.scheme, e.Key[len(prefix):]); slot != 0 {
				week[slot] = decodeLessons(e.Data)
			}
		}
		return week

	case SchemeGroupTree:
		path := Path("universities", universityID, "schedule", groupID, p.String())
		entries, err := a.store.ListCollection(ctx, path)
		if err != nil {
			a.log.Warn("week fetch failed", logx.Err(err), logx.String("path", path))
			return week
		}
		for _, e := range entries {
			if slot := slotForKey(a.scheme, e.Key); slot != 0 {
				week[slot] = decodeLessons(e.Data)
			}
		}
		return week
	}

	return week
}
