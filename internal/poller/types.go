package poller

import (
	"context"

	"github.com/robfig/cron/v3"

	"homeworkbot/internal/homework"
)

// Fetcher returns the raw API response for statuses updated since from.
type Fetcher interface {
	Fetch(ctx context.Context, from int64) (homework.Response, error)
}

// Notifier delivers one chat message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// StatusReporter receives a one-line summary after every cycle
// (systemd status in production).
type StatusReporter interface {
	Status(s string)
	Watchdog()
}

// Interval is the retry interval between cycles.
type Interval struct {
	Schedule cron.Schedule
	Spec     string // human-readable, for logs
}

// State is what the loop carries from one cycle to the next.
type State struct {
	// Timestamp is the lower bound (Unix seconds) of the next fetch window.
	Timestamp int64
	// Statuses holds the last status seen per homework.
	Statuses map[string]homework.Status
}
