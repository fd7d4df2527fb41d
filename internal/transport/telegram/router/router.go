package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusbot/internal/profile"
	"campusbot/internal/schedule"
	kit "campusbot/internal/transport"
	"campusbot/pkg/tgui"
	logx "campusbot/pkg/logx"
)

// Subscriptions is the digest hookup: chats opt in and out of the daily push.
type Subscriptions interface {
	Subscribe(ctx context.Context, chatID int64) error
	Unsubscribe(ctx context.Context, chatID int64) error
}

// Exporter renders a resolved week as an iCalendar document.
type Exporter interface {
	ExportWeek(week map[int]schedule.Result, calendarName string) ([]byte, error)
}

// Router owns the command loop: it reads updates from the adapter, resolves
// timetables and sends replies. All schedule logic lives in the resolver;
// this layer only parses commands and formats output.
type Router struct {
	adapter  kit.Adapter
	resolver *schedule.Resolver
	profiles *profile.Service
	subs     Subscriptions
	exporter Exporter
	log      logx.Logger

	loc *time.Location
	now func() time.Time
}

func New(adapter kit.Adapter, resolver *schedule.Resolver, profiles *profile.Service, subs Subscriptions, exporter Exporter, loc *time.Location, log logx.Logger) *Router {
	if loc == nil {
		loc = time.Local
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{
		adapter:  adapter,
		resolver: resolver,
		profiles: profiles,
		subs:     subs,
		exporter: exporter,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}
}

// Run consumes updates until ctx is cancelled.
func (r *Router) Run(ctx context.Context, updates <-chan kit.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case up, ok := <-updates:
			if !ok {
				return
			}
			if up.Message == nil {
				continue
			}
			r.handle(ctx, up.Message)
		}
	}
}

func (r *Router) handle(ctx context.Context, m *kit.Message) {
	cmd, arg := parseCommand(m.Text)
	if cmd == "" {
		return
	}
	to := kit.ChatTarget{ChatID: m.ChatID, ThreadID: m.ThreadID}

	switch cmd {
	case "start", "help":
		r.reply(ctx, to, helpText())
	case "bind":
		r.handleBind(ctx, to, m.ChatID, arg)
	case "unbind":
		if err := r.profiles.UnbindChat(ctx, m.ChatID); err != nil {
			r.log.Warn("unbind failed", logx.Err(err), logx.Int64("chat", m.ChatID))
		}
		r.reply(ctx, to, tgui.Esc("This chat is no longer linked to a student profile."))
	case "today":
		r.handleDay(ctx, to, m.ChatID, false)
	case "tomorrow":
		r.handleDay(ctx, to, m.ChatID, true)
	case "week":
		r.handleWeek(ctx, to, m.ChatID)
	case "export":
		r.handleExport(ctx, to, m.ChatID)
	case "subscribe":
		r.handleSubscribe(ctx, to, m.ChatID, true)
	case "unsubscribe":
		r.handleSubscribe(ctx, to, m.ChatID, false)
	default:
		// Unknown commands are ignored; this bot may share group chats
		// with other bots.
	}
}

func (r *Router) handleBind(ctx context.Context, to kit.ChatTarget, chatID int64, arg string) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		r.reply(ctx, to, tgui.Esc("Usage: /bind <student id>"))
		return
	}
	if _, err := r.profiles.GetProfile(ctx, arg); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			r.reply(ctx, to, tgui.Esc("No such student id."))
			return
		}
		r.log.Warn("bind lookup failed", logx.Err(err))
		r.reply(ctx, to, tgui.Esc("Could not check that id right now, try again later."))
		return
	}
	if err := r.profiles.BindChat(ctx, chatID, arg); err != nil {
		r.log.Warn("bind failed", logx.Err(err), logx.Int64("chat", chatID))
		r.reply(ctx, to, tgui.Esc("Could not save the link, try again later."))
		return
	}
	r.reply(ctx, to, tgui.Esc("Linked. Try /today or /week."))
}

// query builds the viewer's schedule query for the given date, or explains
// over chat why it can't.
func (r *Router) query(ctx context.Context, to kit.ChatTarget, chatID int64, date time.Time) (schedule.Query, bool) {
	viewer, ok, err := r.profiles.ViewerForChat(ctx, chatID)
	if err != nil {
		r.log.Warn("binding lookup failed", logx.Err(err), logx.Int64("chat", chatID))
	}
	if !ok {
		r.reply(ctx, to, tgui.Esc("This chat isn't linked yet. Use /bind <student id> first."))
		return schedule.Query{}, false
	}

	p, err := r.profiles.GetProfile(ctx, viewer)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		r.log.Warn("profile lookup failed", logx.Err(err), logx.String("viewer", viewer))
	}
	return schedule.Query{
		UniversityID: p.UniversityID,
		GroupID:      p.GroupID,
		Date:         date,
	}, true
}

func (r *Router) handleDay(ctx context.Context, to kit.ChatTarget, chatID int64, wantTomorrow bool) {
	q, ok := r.query(ctx, to, chatID, r.now().In(r.loc))
	if !ok {
		return
	}

	today, tomorrow, err := r.resolver.ResolveTodayTomorrow(ctx, q)
	if errors.Is(err, schedule.ErrProfileIncomplete) {
		r.reply(ctx, to, profileIncompleteText())
		return
	}
	res := today
	if wantTomorrow {
		res = tomorrow
	}
	r.reply(ctx, to, FormatDay(res))
}

func (r *Router) handleWeek(ctx context.Context, to kit.ChatTarget, chatID int64) {
	q, ok := r.query(ctx, to, chatID, r.now().In(r.loc))
	if !ok {
		return
	}

	week, err := r.resolver.ResolveFullWeek(ctx, q)
	if errors.Is(err, schedule.ErrProfileIncomplete) {
		r.reply(ctx, to, profileIncompleteText())
		return
	}
	r.reply(ctx, to, formatWeek(week))
}

func (r *Router) handleExport(ctx context.Context, to kit.ChatTarget, chatID int64) {
	q, ok := r.query(ctx, to, chatID, r.now().In(r.loc))
	if !ok {
		return
	}

	week, err := r.resolver.ResolveFullWeek(ctx, q)
	if errors.Is(err, schedule.ErrProfileIncomplete) {
		r.reply(ctx, to, profileIncompleteText())
		return
	}

	name := r.profiles.UniversityName(ctx, q.UniversityID)
	data, err := r.exporter.ExportWeek(week, name)
	if err != nil {
		r.log.Warn("export failed", logx.Err(err), logx.Int64("chat", chatID))
		r.reply(ctx, to, tgui.Esc("Could not build the calendar file, try again later."))
		return
	}
	if err := r.adapter.SendFile(ctx, to, "timetable.ics", data, "Your week as a calendar"); err != nil {
		r.log.Warn("export send failed", logx.Err(err), logx.Int64("chat", chatID))
	}
}

func (r *Router) handleSubscribe(ctx context.Context, to kit.ChatTarget, chatID int64, on bool) {
	var err error
	if on {
		err = r.subs.Subscribe(ctx, chatID)
	} else {
		err = r.subs.Unsubscribe(ctx, chatID)
	}
	if err != nil {
		r.log.Warn("subscription change failed", logx.Err(err), logx.Int64("chat", chatID), logx.Bool("on", on))
		r.reply(ctx, to, tgui.Esc("Could not update the subscription, try again later."))
		return
	}
	if on {
		r.reply(ctx, to, tgui.Esc("Subscribed: you'll get tomorrow's classes every evening."))
	} else {
		r.reply(ctx, to, tgui.Esc("Unsubscribed."))
	}
}

func (r *Router) reply(ctx context.Context, to kit.ChatTarget, html tgui.H) {
	_, err := r.adapter.SendText(ctx, to, html.String(), &kit.SendOptions{
		ParseMode:      "HTML",
		DisablePreview: true,
	})
	if err != nil {
		r.log.Warn("send failed", logx.Err(err), logx.Int64("chat", to.ChatID))
	}
}

// parseCommand extracts "cmd" and the argument tail from "/cmd@bot arg...".
func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	rest := text[1:]
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		cmd, arg = rest[:i], strings.TrimSpace(rest[i+1:])
	} else {
		cmd = rest
	}
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), arg
}
