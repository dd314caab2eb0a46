package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Field adds one key/value to a log event. On duplicate keys the later
// field wins.
type Field func(*zerolog.Event)

func String(key, val string) Field { return func(e *zerolog.Event) { e.Str(key, val) } }
func Int(key string, val int) Field { return func(e *zerolog.Event) { e.Int(key, val) } }
func Int64(key string, val int64) Field {
	return func(e *zerolog.Event) { e.Int64(key, val) }
}
func Bool(key string, val bool) Field { return func(e *zerolog.Event) { e.Bool(key, val) } }
func Duration(key string, val time.Duration) Field {
	return func(e *zerolog.Event) { e.Dur(key, val) }
}
func Any(key string, val any) Field { return func(e *zerolog.Event) { e.Interface(key, val) } }

// Err is a no-op for a nil error.
func Err(err error) Field {
	if err == nil {
		return nil
	}
	return func(e *zerolog.Event) { e.Err(err) }
}

// source yields the zerolog.Logger an event goes to. A *Service is a source
// whose output changes on Apply.
type source interface {
	logger() zerolog.Logger
}

type fixed struct{ zl zerolog.Logger }

func (f fixed) logger() zerolog.Logger { return f.zl }

// Logger is a small value-type logger. The zero value discards everything.
type Logger struct {
	src    source
	fields []Field
}

func Nop() Logger { return Logger{src: fixed{zerolog.Nop()}} }

// NewConsole is a standalone console logger, used before the Service exists.
func NewConsole(level string) Logger {
	initGlobals()
	return Logger{src: fixed{build(consoleWriter(os.Stdout), ParseLevel(level))}}
}

// NewWriter writes JSON lines to w.
func NewWriter(w io.Writer, level string) Logger {
	initGlobals()
	return Logger{src: fixed{build(w, ParseLevel(level))}}
}

func build(w io.Writer, lvl Level) zerolog.Logger {
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func consoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
		FormatCaller: func(i any) string {
			s, _ := i.(string)
			return s
		},
	}
}

func (l Logger) IsZero() bool { return l.src == nil && len(l.fields) == 0 }

func (l Logger) zl() zerolog.Logger {
	if l.src == nil {
		return zerolog.Nop()
	}
	return l.src.logger()
}

func (l Logger) Enabled(level Level) bool { return level >= l.zl().GetLevel() }

// With returns a logger that adds fields to every event.
func (l Logger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	out := Logger{src: l.src, fields: make([]Field, 0, len(l.fields)+len(fields))}
	out.fields = append(append(out.fields, l.fields...), fields...)
	return out
}

func (l Logger) Trace(msg string, fields ...Field) { l.write(LevelTrace, msg, fields) }
func (l Logger) Debug(msg string, fields ...Field) { l.write(LevelDebug, msg, fields) }
func (l Logger) Info(msg string, fields ...Field)  { l.write(LevelInfo, msg, fields) }
func (l Logger) Warn(msg string, fields ...Field)  { l.write(LevelWarn, msg, fields) }
func (l Logger) Error(msg string, fields ...Field) { l.write(LevelError, msg, fields) }

// Critical is the highest severity. Unlike zerolog's Fatal it never exits.
func (l Logger) Critical(msg string, fields ...Field) { l.write(LevelCritical, msg, fields) }

func (l Logger) write(level Level, msg string, fields []Field) {
	zl := l.zl()
	e := zl.WithLevel(level)
	if e == nil {
		return
	}
	if c := caller(3); c != "" {
		e.Str(zerolog.CallerFieldName, c)
	}
	for _, set := range [][]Field{l.fields, fields} {
		for _, f := range set {
			if f != nil {
				f(e)
			}
		}
	}
	e.Msg(msg)
}

// caller returns file:line of the frame skip levels up.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
