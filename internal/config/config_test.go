package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeYAMLOverlaysDefaults(t *testing.T) {
	data := []byte(`
poll:
  interval: "5m"
logging:
  level: debug
  file:
    truncate: true
`)
	cfg, err := Decode("config.yaml", data)
	require.NoError(t, err)

	assert.Equal(t, "5m", cfg.Poll.Interval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.File.Truncate)
	// untouched sections keep their defaults
	assert.True(t, cfg.Logging.File.Enabled)
	assert.Equal(t, DefaultLogPath, cfg.Logging.File.Path)
	assert.Equal(t, DefaultEndpoint, cfg.API.Endpoint)
	assert.Equal(t, 3, cfg.Notifier.RatePerSec)
}

func TestDecodeJSON(t *testing.T) {
	cfg, err := Decode("config.json", []byte(`{"api":{"timeout":"0s"},"watch":true}`))
	require.NoError(t, err)
	assert.Equal(t, "0s", cfg.API.Timeout)
	assert.True(t, cfg.Watch)
}

func TestDecodeEmptyFileMeansDefaults(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		cfg, err := Decode(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, Default(), cfg, name)
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]struct {
		path string
		data string
	}{
		"unknown key":       {"c.json", `{"poll":{"every":"5m"}}`},
		"unknown yaml key":  {"c.yaml", "telegram:\n  token: x\n"},
		"trailing data":     {"c.json", `{"watch":true}{"watch":false}`},
		"negative duration": {"c.json", `{"api":{"timeout":"-1s"}}`},
		"bad interval":      {"c.json", `{"poll":{"interval":"soon"}}`},
		"bad timezone":      {"c.json", `{"poll":{"interval":"0 9 * * *","timezone":"Mars/Base"}}`},
		"bad endpoint":      {"c.json", `{"api":{"endpoint":"ftp://example.com"}}`},
		"negative rate":     {"c.json", `{"notifier":{"rate_per_sec":-1}}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(tc.path, []byte(tc.data))
			require.Error(t, err)
		})
	}
}

func TestManagerWithoutPathUsesDefaults(t *testing.T) {
	m := NewManager("  ")
	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Same(t, cfg, m.Get())
	require.NoError(t, m.Watch(context.Background()))
}

func TestManagerLoadMissingFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := m.Load()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchPublishesChangedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll:\n  interval: 10m\n"), 0o600))

	m := NewManager(path)
	_, err := m.Load()
	require.NoError(t, err)

	sub, unsubscribe := m.Subscribe(1)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Watch(ctx) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("poll:\n  interval: 2m\n"), 0o600))

	select {
	case cfg := <-sub:
		assert.Equal(t, "2m", cfg.Poll.Interval)
		assert.Equal(t, "2m", m.Get().Poll.Interval)
	case <-time.After(3 * time.Second):
		t.Fatal("no config published")
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	vars := map[string]string{
		EnvPracticumToken: "p",
		EnvTelegramToken:  " t ",
		EnvTelegramChatID: "42",
	}
	c, err := CredentialsFromEnv(func(k string) string { return vars[k] })
	require.NoError(t, err)
	assert.Equal(t, Credentials{PracticumToken: "p", TelegramToken: "t", ChatID: "42"}, c)
}

func TestCredentialsFromLegacyEnv(t *testing.T) {
	vars := map[string]string{"PR_TOKEN": "p", "TOKEN": "t", "CHAT_ID": "42", EnvTelegramChatID: "7"}
	c, err := CredentialsFromEnv(func(k string) string { return vars[k] })
	require.NoError(t, err)
	assert.Equal(t, "p", c.PracticumToken)
	assert.Equal(t, "t", c.TelegramToken)
	assert.Equal(t, "7", c.ChatID, "primary name wins over the alias")
}

func TestCredentialsMissing(t *testing.T) {
	_, err := CredentialsFromEnv(func(k string) string {
		if k == EnvTelegramChatID {
			return "42"
		}
		return ""
	})
	require.ErrorIs(t, err, ErrMissingCredentials)

	var missing *MissingEnvError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{EnvPracticumToken, EnvTelegramToken}, missing.Names)
	assert.Contains(t, err.Error(), "PRACTICUM_TOKEN, TELEGRAM_TOKEN")
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(""))
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HWBOT_TEST_A=from-file\nHWBOT_TEST_B=from-file\n"), 0o600))
	t.Setenv("HWBOT_TEST_A", "from-env")
	t.Setenv("HWBOT_TEST_B", "")
	require.NoError(t, os.Unsetenv("HWBOT_TEST_B"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv("HWBOT_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("HWBOT_TEST_B"))
}

func TestSummarizeConfigChange(t *testing.T) {
	prev := Default()
	next := Default()
	next.Poll.Interval = "1m"
	next.Logging.Level = "debug"

	changed, attrs := SummarizeConfigChange(prev, next)
	assert.Equal(t, []string{"poll", "logging"}, changed)
	assert.NotEmpty(t, attrs)
	assert.False(t, RequiresRestart(changed))

	next.API.Endpoint = "https://example.com/api/"
	changed, _ = SummarizeConfigChange(prev, next)
	assert.True(t, RequiresRestart(changed))

	changed, _ = SummarizeConfigChange(prev, Default())
	assert.Empty(t, changed)
}

func TestDuration(t *testing.T) {
	d, err := Duration("x", "")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = DurationOr("x", "0s", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	d, err = DurationOr("x", " 90s ", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = Duration("x", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x:")

	_, err = DurationOr("x", "-1s", time.Minute)
	require.Error(t, err)
}

func TestSubscribeKeepsLatest(t *testing.T) {
	m := NewManager("")
	sub, unsubscribe := m.Subscribe(1)

	first, second := Default(), Default()
	second.Poll.Interval = "1m"
	m.publish(first)
	m.publish(second)

	assert.Same(t, second, <-sub)
	unsubscribe()
	unsubscribe()
	_, ok := <-sub
	assert.False(t, ok, "channel closed after unsubscribe")
}
