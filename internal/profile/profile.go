package profile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"campusbot/internal/calendar"
	"campusbot/internal/store"
	logx "campusbot/pkg/logx"
)

// ErrNotFound means the requested user document does not exist.
var ErrNotFound = errors.New("profile not found")

// Profile is the slice of the user document the engine cares about.
// UniversityID or GroupID may be empty on half-provisioned accounts.
type Profile struct {
	UniversityID string
	GroupID      string
	FullName     string
}

// Service reads user profiles, university calendar settings and chat
// bindings from the document store. It keeps no cache: settings changes in
// the store apply on the next query.
type Service struct {
	store store.Store
	log   logx.Logger
}

func New(st store.Store, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{store: st, log: log}
}

// GetProfile loads users/{viewerID}.
func (s *Service) GetProfile(ctx context.Context, viewerID string) (Profile, error) {
	doc, ok, err := s.store.GetDocument(ctx, store.Path("users", viewerID))
	if err != nil {
		return Profile{}, fmt.Errorf("load profile %s: %w", viewerID, err)
	}
	if !ok {
		return Profile{}, ErrNotFound
	}
	p := Profile{
		UniversityID: docStr(doc, "universityId"),
		GroupID:      docStr(doc, "group"),
		FullName:     docStr(doc, "fullName"),
	}
	return p, nil
}

// CalendarConfig loads the week-numbering anchor from universities/{id}.
// Missing documents and missing fields both fall back to defaults, matching
// how the store has always been read: scheduleStartDate "YYYY-MM-DD" and
// scheduleFirstWeekType "first"/"second" (legacy "even"/"odd" accepted).
func (s *Service) CalendarConfig(ctx context.Context, universityID string) (calendar.Config, error) {
	doc, ok, err := s.store.GetDocument(ctx, store.Path("universities", universityID))
	if err != nil {
		return calendar.Config{}, fmt.Errorf("load university %s: %w", universityID, err)
	}
	if !ok {
		return calendar.Config{}, nil
	}

	var cfg calendar.Config
	if raw := docStr(doc, "scheduleStartDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.log.Warn("bad scheduleStartDate; ignoring",
				logx.String("university", universityID), logx.String("value", raw))
		} else {
			cfg.BaseDate = t
		}
	}
	if raw := docStr(doc, "scheduleFirstWeekType"); raw != "" {
		p, err := calendar.ParseParity(raw)
		if err != nil {
			s.log.Warn("bad scheduleFirstWeekType; ignoring",
				logx.String("university", universityID), logx.String("value", raw))
		} else {
			cfg.BaseParity = p
		}
	}
	return cfg, nil
}

// UniversityName returns the display name of a university, or its id when
// the document has none.
func (s *Service) UniversityName(ctx context.Context, universityID string) string {
	doc, ok, err := s.store.GetDocument(ctx, store.Path("universities", universityID))
	if err != nil || !ok {
		return universityID
	}
	if name := docStr(doc, "name"); name != "" {
		return name
	}
	return universityID
}

// ---- chat bindings ----
//
// A binding connects a Telegram chat to a viewer id so /today etc. know whose
// timetable to resolve. Bindings live in the store as bindings/{chatID}.

func (s *Service) BindChat(ctx context.Context, chatID int64, viewerID string) error {
	return s.store.SetDocument(ctx, bindingPath(chatID), map[string]any{
		"viewerId": viewerID,
		"boundAt":  time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Service) UnbindChat(ctx context.Context, chatID int64) error {
	return s.store.DeleteDocument(ctx, bindingPath(chatID))
}

// ViewerForChat returns the bound viewer id, if any.
func (s *Service) ViewerForChat(ctx context.Context, chatID int64) (string, bool, error) {
	doc, ok, err := s.store.GetDocument(ctx, bindingPath(chatID))
	if err != nil || !ok {
		return "", false, err
	}
	id := docStr(doc, "viewerId")
	return id, id != "", nil
}

func bindingPath(chatID int64) string {
	return store.Path("bindings", strconv.FormatInt(chatID, 10))
}

func docStr(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}
