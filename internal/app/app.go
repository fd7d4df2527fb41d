package app

import (
	"context"
	"fmt"
	"time"

	"campusbot/internal/config"
	"campusbot/internal/digest"
	"campusbot/internal/ics"
	"campusbot/internal/profile"
	"campusbot/internal/schedule"
	"campusbot/internal/store"
	kit "campusbot/internal/transport"
	"campusbot/internal/transport/telegram"
	"campusbot/internal/transport/telegram/router"
	logx "campusbot/pkg/logx"
)

// App owns the wiring: config, logging, store, engine, transport, digest.
type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	store   store.Store
	adapter kit.Adapter
	router  *router.Router
	digest  *digest.Service

	updates chan kit.Update
	cancel  context.CancelFunc
}

func New(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(logConfig(cfg.Logging))
	mgr.SetLogger(log.With(logx.String("comp", "config")))
	mgr.SetValidator(validate)

	if err := validate(context.Background(), cfg); err != nil {
		logSvc.Close()
		return nil, err
	}

	busy, _ := config.ParseDurationField("store.busy_timeout", cfg.Store.BusyTimeout)
	st, err := store.OpenSQLite(store.Config{Path: cfg.Store.Path, BusyTimeout: busy},
		log.With(logx.String("comp", "store")))
	if err != nil {
		logSvc.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	adapterLog := log.With(logx.String("comp", "telegram"))
	scheme, _ := store.ParseScheme(cfg.Store.Scheme)
	fetcher, err := store.NewAdapter(scheme, st, log.With(logx.String("comp", "store.adapter")))
	if err != nil {
		st.Close()
		logSvc.Close()
		return nil, err
	}

	profiles := profile.New(st, log.With(logx.String("comp", "profile")))
	resolver := schedule.NewResolver(fetcher, profiles, log.With(logx.String("comp", "schedule")))

	pollTimeout, _ := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	tg, err := telegram.New(telegram.Config{Token: cfg.Telegram.Token, PollTimeout: pollTimeout}, adapterLog)
	if err != nil {
		st.Close()
		logSvc.Close()
		return nil, fmt.Errorf("telegram: %w", err)
	}

	loc := time.Local
	if cfg.Digest.Timezone != "" {
		if l, lerr := time.LoadLocation(cfg.Digest.Timezone); lerr == nil {
			loc = l
		}
	}

	dg, err := digest.New(digest.Config{
		Enabled:    cfg.Digest.Enabled,
		Cron:       cfg.Digest.Cron,
		Timezone:   cfg.Digest.Timezone,
		RatePerSec: cfg.Digest.RatePerSec,
	}, st, profiles, resolver, tg,
		func(res schedule.Result) string { return router.FormatDay(res).String() },
		log.With(logx.String("comp", "digest")))
	if err != nil {
		st.Close()
		logSvc.Close()
		return nil, fmt.Errorf("digest: %w", err)
	}

	exporter := ics.Exporter{WeekInterval: weekInterval(scheme), Location: loc}
	rt := router.New(tg, resolver, profiles, dg, exporter, loc, log.With(logx.String("comp", "router")))

	return &App{
		cfgMgr:  mgr,
		logSvc:  logSvc,
		log:     log,
		store:   st,
		adapter: tg,
		router:  rt,
		digest:  dg,
		updates: make(chan kit.Update, 128),
	}, nil
}

// The flat layout repeats every week; the parity-aware ones every two.
func weekInterval(scheme store.Scheme) int {
	if scheme == store.SchemeFlat {
		return 1
	}
	return 2
}

func validate(_ context.Context, cfg *config.Config) error {
	if _, err := store.ParseScheme(cfg.Store.Scheme); err != nil {
		return err
	}
	if _, err := config.ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout); err != nil {
		return err
	}
	if _, err := config.ParseDurationField("store.busy_timeout", cfg.Store.BusyTimeout); err != nil {
		return err
	}
	return nil
}

func logConfig(c config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File: logx.FileConfig{
			Enabled: c.File.Enabled,
			Path:    c.File.Path,
		},
	}
}

func (a *App) Logger() logx.Logger { return a.log }

func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	if err := a.adapter.Start(ctx, a.updates); err != nil {
		return err
	}
	go a.router.Run(ctx, a.updates)

	if err := a.digest.Start(ctx); err != nil {
		return err
	}

	// Hot reload: re-apply logging on config changes. Store/telegram changes
	// need a restart; the validator already rejects unparseable values.
	sub := a.cfgMgr.Subscribe(1)
	go func() {
		defer a.cfgMgr.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case cfg, ok := <-sub:
				if !ok {
					return
				}
				a.logSvc.Apply(logConfig(cfg.Logging))
				a.log.Info("config reloaded")
			}
		}
	}()
	go func() { _ = a.cfgMgr.Watch(ctx) }()

	a.log.Info("campusbot started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	a.digest.Stop()
	_ = a.adapter.Stop(ctx)
	_ = a.store.Close()
	a.log.Info("campusbot stopped")
	_ = a.logSvc.Close()
	return nil
}
