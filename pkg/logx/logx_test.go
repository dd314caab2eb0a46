package logx

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kit "homeworkbot/internal/transport"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureSender) SendText(_ context.Context, _ kit.ChatTarget, text string, _ *kit.SendOptions) (kit.MessageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return kit.MessageRef{}, nil
}

func (c *captureSender) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func TestFileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	svc, log := New(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}}, nil)

	log.With(String("comp", "poller")).Critical("Program failure: boom", Err(errors.New("boom")))
	log.Debug("hidden")
	require.NoError(t, svc.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `"level":"critical"`)
	assert.Contains(t, out, `"comp":"poller"`)
	assert.Contains(t, out, `"message":"Program failure: boom"`)
	assert.Contains(t, out, `"err":"boom"`)
	assert.Contains(t, out, `"caller":"logging_test.go:`)
	assert.NotContains(t, out, "hidden")
}

func TestFileTruncateOnlyOnFirstOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	cfg := Config{Level: "info", File: FileConfig{Enabled: true, Path: path, Truncate: true}}
	svc, log := New(cfg, nil)
	log.Info("first")
	svc.Apply(cfg)
	log.Info("second")
	require.NoError(t, svc.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "previous run")
	assert.Contains(t, string(b), "first")
	assert.Contains(t, string(b), "second")
}

func TestFileAppendsByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	svc, log := New(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}}, nil)
	log.Info("next run")
	require.NoError(t, svc.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "previous run")
	assert.Contains(t, string(b), "next run")
}

func TestTelegramSinkHonoursMinLevel(t *testing.T) {
	cs := &captureSender{}
	svc, log := New(Config{
		Level:    "debug",
		Telegram: TelegramConfig{Enabled: true, MinLevel: "error", RatePerSec: 10},
	}, cs)
	defer svc.Close()
	svc.SetTelegramTarget(kit.ChatTarget{ChatID: 1})

	log.Info("routine")
	log.With(String("comp", "practicum")).Error("network problem", Int("attempt", 1))

	require.Eventually(t, func() bool { return len(cs.sent()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "[ERROR] network problem\n- attempt=1\n- comp=practicum", cs.sent()[0])
}

func TestTelegramSinkWithoutTargetSendsNothing(t *testing.T) {
	cs := &captureSender{}
	svc, log := New(Config{Level: "info", Telegram: TelegramConfig{Enabled: true, MinLevel: "info"}}, cs)
	log.Error("nobody listens")
	require.NoError(t, svc.Close())
	assert.Empty(t, cs.sent())
}

func TestFormatTelegramJSON(t *testing.T) {
	got := formatLine([]byte(`{"level":"critical","time":"x","caller":"a.go:1","message":"down","b":2,"a":"x"}`))
	assert.Equal(t, "[CRITICAL] down\n- a=x\n- b=2", got)

	assert.Equal(t, "not json", formatLine([]byte("not json\n")))
}

func TestWriterLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")
	log.Info("quiet")
	log.Warn("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
	assert.True(t, log.Enabled(LevelError))
	assert.False(t, log.Enabled(LevelDebug))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelCritical, ParseLevel("critical"))
	assert.Equal(t, LevelCritical, ParseLevel("FATAL"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestNopAndZero(t *testing.T) {
	var zero Logger
	assert.True(t, zero.IsZero())
	assert.False(t, Nop().IsZero())
	Nop().Critical("ignored")
}

func TestClipKeepsRunesWhole(t *testing.T) {
	got := clip(strings.Repeat("ж", 400), maxTelegramField)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxTelegramField)
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcdefg...", clip("abcdefghijklmnop", 10))
}
