package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"homeworkbot/internal/schedule"
)

// Validate checks every field that would otherwise fail later at runtime.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	u, err := url.Parse(strings.TrimSpace(cfg.API.Endpoint))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.endpoint: invalid URL %q", cfg.API.Endpoint)
	}

	durations := []struct{ path, raw string }{
		{"api.timeout", cfg.API.Timeout},
		{"api.connect_timeout", cfg.API.ConnectTimeout},
		{"telegram.timeout", cfg.Telegram.Timeout},
		{"notifier.dedup_window", cfg.Notifier.DedupWindow},
	}
	for _, d := range durations {
		if _, err := Duration(d.path, d.raw); err != nil {
			return err
		}
	}

	spec, err := schedule.ParseSpec(cfg.Poll.Interval)
	if err != nil {
		return fmt.Errorf("poll.interval: %w", err)
	}
	if tz := strings.TrimSpace(cfg.Poll.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("poll.timezone: %w", err)
		}
	}
	if _, err := schedule.Build(spec, time.UTC); err != nil {
		return fmt.Errorf("poll.interval: %w", err)
	}

	if cfg.Notifier.RatePerSec < 0 {
		return fmt.Errorf("notifier.rate_per_sec must be >= 0")
	}
	if cfg.Logging.Telegram.RatePerSec < 0 {
		return fmt.Errorf("logging.telegram.rate_per_sec must be >= 0")
	}
	return nil
}
