package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusbot/internal/calendar"
	"campusbot/internal/store"
	logx "campusbot/pkg/logx"
)

func seeded(t *testing.T, docs map[string]map[string]any) *Service {
	t.Helper()
	mem := store.NewMemStore()
	ctx := context.Background()
	for path, doc := range docs {
		if err := mem.SetDocument(ctx, path, doc); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}
	return New(mem, logx.Nop())
}

func TestGetProfile(t *testing.T) {
	t.Parallel()
	svc := seeded(t, map[string]map[string]any{
		"users/alice": {"universityId": "nstu", "group": "G1", "fullName": "Alice K"},
		"users/bob":   {"group": "G2"},
	})
	ctx := context.Background()

	p, err := svc.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.UniversityID != "nstu" || p.GroupID != "G1" || p.FullName != "Alice K" {
		t.Fatalf("profile = %+v", p)
	}

	// Half-provisioned accounts load fine with the missing fields empty.
	p, err = svc.GetProfile(ctx, "bob")
	if err != nil {
		t.Fatalf("GetProfile(bob): %v", err)
	}
	if p.UniversityID != "" || p.GroupID != "G2" {
		t.Fatalf("profile = %+v", p)
	}

	if _, err := svc.GetProfile(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCalendarConfig(t *testing.T) {
	t.Parallel()
	svc := seeded(t, map[string]map[string]any{
		"universities/nstu": {
			"name":                  "NSTU",
			"scheduleStartDate":     "2024-09-02",
			"scheduleFirstWeekType": "second",
		},
		"universities/legacy": {
			"scheduleFirstWeekType": "odd",
		},
		"universities/broken": {
			"scheduleStartDate":     "02.09.2024",
			"scheduleFirstWeekType": "third",
		},
	})
	ctx := context.Background()

	cfg, err := svc.CalendarConfig(ctx, "nstu")
	if err != nil {
		t.Fatalf("CalendarConfig: %v", err)
	}
	want := time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC)
	if !cfg.BaseDate.Equal(want) {
		t.Fatalf("BaseDate = %v, want %v", cfg.BaseDate, want)
	}
	if cfg.BaseParity != calendar.Second {
		t.Fatalf("BaseParity = %v, want Second", cfg.BaseParity)
	}

	// Old documents used "even"/"odd" labels.
	cfg, err = svc.CalendarConfig(ctx, "legacy")
	if err != nil {
		t.Fatalf("CalendarConfig(legacy): %v", err)
	}
	if cfg.BaseParity != calendar.Second {
		t.Fatalf("legacy odd = %v, want Second", cfg.BaseParity)
	}

	// Unparseable values are ignored, not fatal: defaults apply.
	cfg, err = svc.CalendarConfig(ctx, "broken")
	if err != nil {
		t.Fatalf("CalendarConfig(broken): %v", err)
	}
	if !cfg.BaseDate.IsZero() || cfg.BaseParity != 0 {
		t.Fatalf("broken values must decode as zero config, got %+v", cfg)
	}

	// Missing university decodes as defaults too.
	cfg, err = svc.CalendarConfig(ctx, "nowhere")
	if err != nil {
		t.Fatalf("CalendarConfig(nowhere): %v", err)
	}
	if !cfg.BaseDate.IsZero() {
		t.Fatalf("missing university: %+v", cfg)
	}
}

func TestUniversityName(t *testing.T) {
	t.Parallel()
	svc := seeded(t, map[string]map[string]any{
		"universities/nstu":    {"name": "NSTU"},
		"universities/unnamed": {"scheduleFirstWeekType": "first"},
	})
	ctx := context.Background()

	if got := svc.UniversityName(ctx, "nstu"); got != "NSTU" {
		t.Fatalf("name = %q", got)
	}
	if got := svc.UniversityName(ctx, "unnamed"); got != "unnamed" {
		t.Fatalf("fallback = %q, want the id", got)
	}
	if got := svc.UniversityName(ctx, "missing"); got != "missing" {
		t.Fatalf("missing doc fallback = %q", got)
	}
}

func TestChatBindings(t *testing.T) {
	t.Parallel()
	svc := seeded(t, nil)
	ctx := context.Background()

	if _, ok, err := svc.ViewerForChat(ctx, 777); ok || err != nil {
		t.Fatalf("fresh chat: ok=%v err=%v", ok, err)
	}

	if err := svc.BindChat(ctx, 777, "alice"); err != nil {
		t.Fatalf("BindChat: %v", err)
	}
	id, ok, err := svc.ViewerForChat(ctx, 777)
	if err != nil || !ok || id != "alice" {
		t.Fatalf("ViewerForChat = %q, %v, %v", id, ok, err)
	}

	// Rebinding replaces the viewer.
	if err := svc.BindChat(ctx, 777, "bob"); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	if id, _, _ := svc.ViewerForChat(ctx, 777); id != "bob" {
		t.Fatalf("after rebind = %q", id)
	}

	if err := svc.UnbindChat(ctx, 777); err != nil {
		t.Fatalf("UnbindChat: %v", err)
	}
	if _, ok, _ := svc.ViewerForChat(ctx, 777); ok {
		t.Fatal("binding survived unbind")
	}
}
