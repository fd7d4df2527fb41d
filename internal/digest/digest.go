package digest

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"campusbot/internal/profile"
	"campusbot/internal/schedule"
	"campusbot/internal/store"
	kit "campusbot/internal/transport"
	logx "campusbot/pkg/logx"
)

// Config for the evening "tomorrow's classes" push.
type Config struct {
	Enabled    bool
	Cron       string // 5-field cron spec; default "0 19 * * *"
	Timezone   string // IANA name; default local
	RatePerSec int    // telegram send budget; default 5
}

// Service pushes tomorrow's timetable to every subscribed chat on a cron
// schedule. Subscriptions live in the document store under
// subscriptions/{chatID} so they survive restarts.
type Service struct {
	cfg      Config
	store    store.Store
	profiles *profile.Service
	resolver *schedule.Resolver
	adapter  kit.Adapter
	log      logx.Logger

	loc     *time.Location
	limiter *rate.Limiter
	cron    *cron.Cron

	// render turns a resolved day into the message body (HTML).
	render func(res schedule.Result) string

	now func() time.Time
}

func New(cfg Config, st store.Store, profiles *profile.Service, resolver *schedule.Resolver, adapter kit.Adapter, render func(schedule.Result) string, log logx.Logger) (*Service, error) {
	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, err
		}
		loc = l
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:      cfg,
		store:    st,
		profiles: profiles,
		resolver: resolver,
		adapter:  adapter,
		render:   render,
		log:      log,
		loc:      loc,
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
		now:      time.Now,
	}, nil
}

// Start registers the cron entry and begins ticking. No-op when disabled.
func (s *Service) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}
	spec := s.cfg.Cron
	if spec == "" {
		spec = "0 19 * * *"
	}
	c := cron.New(cron.WithLocation(s.loc))
	_, err := c.AddFunc(spec, func() { s.runSweep(ctx) })
	if err != nil {
		return err
	}
	s.cron = c
	c.Start()
	s.log.Info("digest scheduled", logx.String("cron", spec), logx.String("tz", s.loc.String()))
	return nil
}

func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// ---- subscriptions ----

func (s *Service) Subscribe(ctx context.Context, chatID int64) error {
	return s.store.SetDocument(ctx, subscriptionPath(chatID), map[string]any{
		"subscribedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Service) Unsubscribe(ctx context.Context, chatID int64) error {
	return s.store.DeleteDocument(ctx, subscriptionPath(chatID))
}

func subscriptionPath(chatID int64) string {
	return store.Path("subscriptions", strconv.FormatInt(chatID, 10))
}

// ---- sweep ----

// runSweep resolves and sends tomorrow's schedule for every subscriber.
// Per-chat failures are logged and skipped; one broken binding must not
// starve the rest of the list.
func (s *Service) runSweep(ctx context.Context) {
	entries, err := s.store.ListCollection(ctx, "subscriptions")
	if err != nil {
		s.log.Warn("digest sweep aborted: subscription list failed", logx.Err(err))
		return
	}
	s.log.Info("digest sweep started", logx.Int("subscribers", len(entries)))

	tomorrow := s.now().In(s.loc).AddDate(0, 0, 1)
	sent := 0
	for _, e := range entries {
		chatID, err := strconv.ParseInt(e.Key, 10, 64)
		if err != nil {
			continue
		}
		if s.sendOne(ctx, chatID, tomorrow) {
			sent++
		}
		if ctx.Err() != nil {
			return
		}
	}
	s.log.Info("digest sweep finished", logx.Int("sent", sent), logx.Int("subscribers", len(entries)))
}

func (s *Service) sendOne(ctx context.Context, chatID int64, date time.Time) bool {
	viewer, ok, err := s.profiles.ViewerForChat(ctx, chatID)
	if err != nil || !ok {
		s.log.Warn("digest: no binding for subscriber", logx.Int64("chat", chatID), logx.Err(err))
		return false
	}
	p, err := s.profiles.GetProfile(ctx, viewer)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		s.log.Warn("digest: profile lookup failed", logx.Err(err), logx.String("viewer", viewer))
		return false
	}

	res, err := s.resolver.ResolveDay(ctx, schedule.Query{
		UniversityID: p.UniversityID,
		GroupID:      p.GroupID,
		Date:         date,
	})
	if errors.Is(err, schedule.ErrProfileIncomplete) {
		// Half-provisioned profile; nothing to send, nothing to escalate.
		return false
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return false
	}
	_, err = s.adapter.SendText(ctx, kit.ChatTarget{ChatID: chatID}, s.render(res), &kit.SendOptions{
		ParseMode:      "HTML",
		DisablePreview: true,
	})
	if err != nil {
		s.log.Warn("digest send failed", logx.Err(err), logx.Int64("chat", chatID))
		return false
	}
	return true
}
