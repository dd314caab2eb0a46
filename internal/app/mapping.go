package app

import (
	"time"

	"homeworkbot/internal/config"
	"homeworkbot/internal/notifier"
	"homeworkbot/internal/poller"
	"homeworkbot/internal/practicum"
	"homeworkbot/internal/schedule"
	kit "homeworkbot/internal/transport"
	logx "homeworkbot/pkg/logx"
)

func mapLoggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled:  cfg.Logging.File.Enabled,
			Path:     cfg.Logging.File.Path,
			Truncate: cfg.Logging.File.Truncate,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
}

func mapNotifierConfig(cfg *config.Config, target kit.ChatTarget) (notifier.Config, error) {
	window, err := config.Duration("notifier.dedup_window", cfg.Notifier.DedupWindow)
	if err != nil {
		return notifier.Config{}, err
	}
	return notifier.Config{
		Target:         target,
		DisablePreview: cfg.Telegram.DisablePreview,
		RatePerSec:     cfg.Notifier.RatePerSec,
		DedupWindow:    window,
	}, nil
}

func mapPracticumConfig(cfg *config.Config, token string) (practicum.Config, error) {
	timeout, err := config.Duration("api.timeout", cfg.API.Timeout)
	if err != nil {
		return practicum.Config{}, err
	}
	connect, err := config.Duration("api.connect_timeout", cfg.API.ConnectTimeout)
	if err != nil {
		return practicum.Config{}, err
	}
	return practicum.Config{
		Endpoint:       cfg.API.Endpoint,
		Token:          token,
		Timeout:        timeout,
		ConnectTimeout: connect,
	}, nil
}

func mapInterval(cfg *config.Config) (poller.Interval, error) {
	s, spec, err := schedule.Parse(cfg.Poll.Interval, cfg.Poll.Timezone)
	if err != nil {
		return poller.Interval{}, err
	}
	return poller.Interval{Schedule: s, Spec: spec.String()}, nil
}

func telegramTimeout(cfg *config.Config) (time.Duration, error) {
	return config.DurationOr("telegram.timeout", cfg.Telegram.Timeout, 15*time.Second)
}
