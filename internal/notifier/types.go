package notifier

import (
	"time"

	kit "homeworkbot/internal/transport"
)

type Config struct {
	Target         kit.ChatTarget
	DisablePreview bool
	RatePerSec     int
	// DedupWindow suppresses identical texts within the window; 0 disables.
	DedupWindow     time.Duration
	DedupMaxEntries int
}

type HistoryItem struct {
	At   time.Time
	Text string
	Err  string
}
