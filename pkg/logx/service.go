package logx

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	kit "homeworkbot/internal/transport"
)

type Config struct {
	Level    string
	Console  bool
	File     FileConfig
	Telegram TelegramConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
	// Truncate empties the file the first time this process opens it.
	Truncate bool
}

type TelegramConfig struct {
	Enabled    bool
	MinLevel   string
	RatePerSec int
}

// DefaultFilePath is used when file logging is enabled without a path.
const DefaultFilePath = "./homework_bot.log"

// Service owns the log sinks. Loggers derived from it follow Apply.
type Service struct {
	mu   sync.Mutex
	file logFile
	tg   *telegramSink

	current atomic.Pointer[zerolog.Logger]
}

// New applies cfg and returns the service with its root logger. sender may
// be nil, in which case the Telegram sink never sends.
func New(cfg Config, sender kit.Sender) (*Service, Logger) {
	initGlobals()
	s := &Service{tg: newTelegramSink(sender)}
	s.Apply(cfg)
	return s, Logger{src: s}
}

func (s *Service) logger() zerolog.Logger {
	if zl := s.current.Load(); zl != nil {
		return *zl
	}
	return zerolog.Nop()
}

// SetTelegramTarget sets the chat the Telegram sink writes to.
func (s *Service) SetTelegramTarget(to kit.ChatTarget) { s.tg.setTarget(to) }

// Apply rebuilds the sinks. Loggers already handed out switch over at
// their next event.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sinks []io.Writer
	if cfg.Console {
		sinks = append(sinks, consoleWriter(os.Stdout))
	}
	if cfg.File.Enabled {
		w, err := s.file.open(cfg.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logx: %v\n", err)
		} else {
			sinks = append(sinks, w)
		}
	} else {
		_ = s.file.close()
	}

	s.tg.configure(cfg.Telegram)
	if cfg.Telegram.Enabled {
		sinks = append(sinks, s.tg)
	}

	if len(sinks) == 0 {
		sinks = append(sinks, consoleWriter(os.Stdout))
	}
	zl := build(zerolog.MultiLevelWriter(sinks...), parseLevelOr(cfg.Level, LevelInfo))
	s.current.Store(&zl)
}

// Close stops the Telegram worker and closes the log file.
func (s *Service) Close() error {
	s.tg.stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.close()
}

// logFile is the JSON file sink. Truncate is honoured only on the first
// open so a reload never wipes the log.
type logFile struct {
	f      *os.File
	path   string
	opened bool
}

func (lf *logFile) open(fc FileConfig) (io.Writer, error) {
	path := cmp.Or(strings.TrimSpace(fc.Path), DefaultFilePath)
	if lf.f == nil || lf.path != path {
		_ = lf.close()

		flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
		if fc.Truncate && !lf.opened {
			flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		}
		f, err := os.OpenFile(path, flags, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %q: %w", path, err)
		}
		lf.f, lf.path, lf.opened = f, path, true
	}
	return zerolog.SyncWriter(lf.f), nil
}

func (lf *logFile) close() error {
	if lf.f == nil {
		return nil
	}
	err := lf.f.Close()
	lf.f, lf.path = nil, ""
	return err
}
