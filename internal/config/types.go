package config

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Store    StoreConfig    `json:"store"`
	Digest   DigestConfig   `json:"digest,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StoreConfig selects the document store database and which of the three
// timetable layouts ("flat", "parity-day", "group-tree") it uses.
// Scheme defaults to "group-tree", the current layout.
type StoreConfig struct {
	Path        string `json:"path"`
	Scheme      string `json:"scheme,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
}

// DigestConfig controls the daily "tomorrow's classes" push.
//
// Cron is a standard 5-field cron spec evaluated in Timezone
// (default "0 19 * * *": every evening at 19:00).
type DigestConfig struct {
	Enabled    bool   `json:"enabled"`
	Cron       string `json:"cron,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}
