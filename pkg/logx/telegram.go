package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	kit "homeworkbot/internal/transport"
)

const (
	maxTelegramLine  = 3500
	maxTelegramField = 600
)

// telegramSink mirrors log lines at or above a minimum level into a chat.
// Writes never block: lines are dropped when the rate limit is hit or the
// queue is full.
type telegramSink struct {
	sender kit.Sender
	queue  chan telegramLine

	mu       sync.Mutex
	target   kit.ChatTarget
	minLevel Level
	limiter  *rate.Limiter
	cancel   context.CancelFunc
	done     chan struct{}
}

type telegramLine struct {
	to   kit.ChatTarget
	text string
}

func newTelegramSink(sender kit.Sender) *telegramSink {
	return &telegramSink{
		sender:   sender,
		queue:    make(chan telegramLine, 256),
		minLevel: LevelError,
		limiter:  rate.NewLimiter(1, 1),
	}
}

func (t *telegramSink) setTarget(to kit.ChatTarget) {
	t.mu.Lock()
	t.target = to
	t.mu.Unlock()
}

// configure updates the level and rate, and starts the sender worker the
// first time the sink is enabled.
func (t *telegramSink) configure(cfg TelegramConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.minLevel = parseLevelOr(cfg.MinLevel, LevelError)
	rps := max(1, cfg.RatePerSec)
	t.limiter = rate.NewLimiter(rate.Limit(rps), rps)

	if cfg.Enabled && t.sender != nil && t.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		t.cancel, t.done = cancel, make(chan struct{})
		go t.run(ctx, t.done)
	}
}

func (t *telegramSink) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case line := <-t.queue:
			_, _ = t.sender.SendText(ctx, line.to, line.text, &kit.SendOptions{DisablePreview: true})
		}
	}
}

func (t *telegramSink) stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

func (t *telegramSink) Write(p []byte) (int, error) { return t.WriteLevel(zerolog.NoLevel, p) }

func (t *telegramSink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	t.mu.Lock()
	to, minLevel, lim, running := t.target, t.minLevel, t.limiter, t.cancel != nil
	t.mu.Unlock()

	if !running || to.IsZero() || level < minLevel || !lim.Allow() {
		return len(p), nil
	}
	if text := formatLine(p); text != "" {
		select {
		case t.queue <- telegramLine{to: to, text: text}:
		default:
		}
	}
	return len(p), nil
}

// formatLine renders a JSON log line as "[LEVEL] message" followed by one
// "- key=value" line per remaining field, keys sorted.
func formatLine(p []byte) string {
	line := bytes.TrimSpace(p)
	var m map[string]any
	if err := json.Unmarshal(line, &m); err != nil {
		return clip(string(line), maxTelegramLine)
	}

	var b strings.Builder
	if lvl, _ := m[zerolog.LevelFieldName].(string); lvl != "" {
		fmt.Fprintf(&b, "[%s] ", strings.ToUpper(lvl))
	}
	msg, _ := m[zerolog.MessageFieldName].(string)
	b.WriteString(msg)

	for _, k := range slices.Sorted(maps.Keys(m)) {
		switch k {
		case zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.CallerFieldName:
			continue
		}
		fmt.Fprintf(&b, "\n- %s=%s", k, clip(fmt.Sprint(m[k]), maxTelegramField))
	}
	return clip(b.String(), maxTelegramLine)
}

// clip shortens s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := max(n-3, 0)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
