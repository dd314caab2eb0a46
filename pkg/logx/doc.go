// Package logx is the bot's structured logging on top of zerolog.
//
// A Service owns three optional sinks: a readable console, a JSON file
// (time, level, message, caller and whatever fields the caller added,
// conventionally "comp") and a rate-limited Telegram chat for high-severity
// lines. Loggers are values; derive one per component with
// log.With(logx.String("comp", name)).
//
// Critical is the top level. It is written as "critical" and never exits.
package logx
