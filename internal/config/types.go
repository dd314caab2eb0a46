package config

// Config holds the non-secret settings. Secrets live in Credentials and are
// only ever read from the environment.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
// Every field has a default, so an absent config file is valid.
type Config struct {
	API      APIConfig      `json:"api"`
	Poll     PollConfig     `json:"poll"`
	Telegram TelegramConfig `json:"telegram"`
	Notifier NotifierConfig `json:"notifier"`
	Logging  LoggingConfig  `json:"logging"`

	// Watch reloads the config file when it changes. Poll, notifier and
	// logging settings are applied live; the rest needs a restart.
	Watch bool `json:"watch,omitempty"`
}

// APIConfig controls the homework statuses client.
type APIConfig struct {
	Endpoint string `json:"endpoint"`
	// Timeout bounds a whole request. "0s" disables it.
	Timeout string `json:"timeout"`
	// ConnectTimeout bounds establishing the TCP connection.
	ConnectTimeout string `json:"connect_timeout"`
}

// PollConfig controls the retry interval between poll cycles.
//
// Interval accepts a Go duration ("10m"), an HH:MM interval ("00:10"),
// or a cron expression ("*/10 * * * *", "@every 10m").
type PollConfig struct {
	Interval string `json:"interval"`
	Timezone string `json:"timezone,omitempty"` // IANA TZ for cron intervals
}

type TelegramConfig struct {
	// APIURL overrides the Bot API base URL (self-hosted Bot API servers).
	APIURL         string `json:"api_url,omitempty"`
	ThreadID       int    `json:"thread_id,omitempty"`
	DisablePreview bool   `json:"disable_preview"`
	Timeout        string `json:"timeout,omitempty"`
}

// NotifierConfig controls outbound chat messages.
//
// DedupWindow suppresses an identical message sent again within the window.
// "0s" (default) sends every message.
type NotifierConfig struct {
	RatePerSec  int    `json:"rate_per_sec"`
	DedupWindow string `json:"dedup_window"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled  bool   `json:"enabled"`
	Path     string `json:"path"`
	Truncate bool   `json:"truncate,omitempty"`
}

// LoggingTelegram mirrors log lines at or above MinLevel into the
// notification chat.
type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

const (
	DefaultEndpoint       = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	DefaultPollInterval   = "10m"
	DefaultAPITimeout     = "30s"
	DefaultConnectTimeout = "10s"
	DefaultLogPath        = "./homework_bot.log"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Endpoint:       DefaultEndpoint,
			Timeout:        DefaultAPITimeout,
			ConnectTimeout: DefaultConnectTimeout,
		},
		Poll: PollConfig{Interval: DefaultPollInterval},
		Telegram: TelegramConfig{
			DisablePreview: true,
			Timeout:        "15s",
		},
		Notifier: NotifierConfig{RatePerSec: 3, DedupWindow: "0s"},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    LoggingFile{Enabled: true, Path: DefaultLogPath},
			Telegram: LoggingTelegram{
				MinLevel:   "error",
				RatePerSec: 1,
			},
		},
	}
}
