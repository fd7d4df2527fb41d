package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
telegram:
  token: "123:abc"
  poll_timeout: "10s"
logging:
  level: debug
  console: true
  file:
    enabled: true
    path: /var/log/campusbot.log
store:
  path: ./data/docs.db
  scheme: parity-day
  busy_timeout: "5s"
digest:
  enabled: true
  cron: "0 8 * * *"
  timezone: Asia/Novosibirsk
  rate_per_sec: 10
`)

	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" || cfg.Telegram.PollTimeout != "10s" {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console || !cfg.Logging.File.Enabled {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if cfg.Store.Scheme != "parity-day" || cfg.Store.BusyTimeout != "5s" {
		t.Fatalf("store = %+v", cfg.Store)
	}
	if !cfg.Digest.Enabled || cfg.Digest.Cron != "0 8 * * *" || cfg.Digest.RatePerSec != 10 {
		t.Fatalf("digest = %+v", cfg.Digest)
	}
}

func TestParseJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json",
		`{"telegram":{"token":"t"},"logging":{"level":"info","console":true,"file":{"enabled":false,"path":""}},"store":{"path":"docs.db"}}`)

	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telegram.Token != "t" || cfg.Store.Path != "docs.db" {
		t.Fatalf("cfg = %+v", cfg)
	}
	// Omitted scheme is resolved downstream to group-tree.
	if cfg.Store.Scheme != "" {
		t.Fatalf("scheme = %q", cfg.Store.Scheme)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
telegram:
  token: t
  pol_timeout: "10s"
logging:
  level: info
  console: true
  file:
    enabled: false
    path: ""
store:
  path: docs.db
`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("misspelled field must be rejected")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json",
		`{"telegram":{"token":"t"},"logging":{"level":"info","console":true,"file":{"enabled":false,"path":""}},"store":{"path":"db"}} {"extra":1}`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("trailing JSON must be rejected")
	}
}

func TestCommitGetAndHashSkip(t *testing.T) {
	t.Parallel()
	m := NewManager("unused")
	if m.Get() != nil {
		t.Fatal("fresh manager has no config")
	}
	cfg := &Config{Store: StoreConfig{Path: "a.db"}}
	m.Commit(cfg)
	if m.Get() != cfg {
		t.Fatal("Get must return the committed pointer")
	}
	if hashConfig(cfg) == 0 {
		t.Fatal("hash of a real config must be nonzero")
	}
	if hashConfig(cfg) != hashConfig(&Config{Store: StoreConfig{Path: "a.db"}}) {
		t.Fatal("equal content must hash equal")
	}
	if hashConfig(cfg) == hashConfig(&Config{Store: StoreConfig{Path: "b.db"}}) {
		t.Fatal("different content must hash different")
	}
}

func TestSubscribePublishDropOldest(t *testing.T) {
	t.Parallel()
	m := NewManager("unused")
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	first := &Config{Store: StoreConfig{Path: "1"}}
	second := &Config{Store: StoreConfig{Path: "2"}}
	m.publish(first)
	m.publish(second) // buffer full: first is dropped for the newest

	got := <-ch
	if got != second {
		t.Fatalf("subscriber got %q, want the latest", got.Store.Path)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected second delivery: %+v", extra)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()
	m := NewManager("unused")
	ch := m.Subscribe(1)
	m.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Fatal("channel must be closed after Unsubscribe")
	}
	// Publishing after unsubscribe must not panic.
	m.publish(&Config{})
	m.Unsubscribe(ch) // double unsubscribe is a no-op
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		raw  string
		want time.Duration
		ok   bool
	}{
		{"empty is zero", "", 0, true},
		{"seconds", "5s", 5 * time.Second, true},
		{"spaces trimmed", "  2m ", 2 * time.Minute, true},
		{"garbage", "soon", 0, false},
		{"negative", "-1s", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDurationField("store.busy_timeout", tc.raw)
			if tc.ok != (err == nil) {
				t.Fatalf("err = %v, ok = %v", err, tc.ok)
			}
			if err == nil && got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}

	d, err := ParseDurationOrDefault("telegram.poll_timeout", "", 10*time.Second)
	if err != nil || d != 10*time.Second {
		t.Fatalf("default not applied: %v, %v", d, err)
	}
	d, err = ParseDurationOrDefault("telegram.poll_timeout", "3s", 10*time.Second)
	if err != nil || d != 3*time.Second {
		t.Fatalf("explicit value lost: %v, %v", d, err)
	}
}
