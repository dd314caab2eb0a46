package config

import (
	"strings"

	logx "homeworkbot/pkg/logx"
)

// SummarizeConfigChange returns the changed top-level sections and safe
// structured fields for logging a reload.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 8)

	if oldCfg.API != newCfg.API {
		changed = append(changed, "api")
		attrs = append(attrs, logx.String("api.endpoint", strings.TrimSpace(newCfg.API.Endpoint)))
	}
	if oldCfg.Poll != newCfg.Poll {
		changed = append(changed, "poll")
		attrs = append(attrs,
			logx.String("poll.interval", strings.TrimSpace(newCfg.Poll.Interval)),
			logx.String("poll.timezone", strings.TrimSpace(newCfg.Poll.Timezone)),
		)
	}
	if oldCfg.Telegram != newCfg.Telegram {
		changed = append(changed, "telegram")
		attrs = append(attrs, logx.Int("telegram.thread_id", newCfg.Telegram.ThreadID))
	}
	if oldCfg.Notifier != newCfg.Notifier {
		changed = append(changed, "notifier")
		attrs = append(attrs, logx.String("notifier.dedup_window", newCfg.Notifier.DedupWindow))
	}
	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.file.enabled", newCfg.Logging.File.Enabled),
		)
	}
	if oldCfg.Watch != newCfg.Watch {
		changed = append(changed, "watch")
	}
	return changed, attrs
}

// RequiresRestart reports whether the change touches sections that are only
// read at startup.
func RequiresRestart(changed []string) bool {
	for _, s := range changed {
		switch s {
		case "api", "telegram", "watch":
			return true
		}
	}
	return false
}
