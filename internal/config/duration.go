package config

import (
	"fmt"
	"strings"
	"time"
)

// Duration parses a Go duration string for the named field. Blank means zero.
func Duration(field, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s: %w", field, err)
	case d < 0:
		return 0, fmt.Errorf("%s: negative duration %s", field, d)
	}
	return d, nil
}

// DurationOr is Duration with def substituted for zero.
func DurationOr(field, raw string, def time.Duration) (time.Duration, error) {
	d, err := Duration(field, raw)
	if err == nil && d == 0 {
		d = def
	}
	return d, err
}
