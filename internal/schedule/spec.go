package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind tells a cron expression from a fixed interval.
type Kind int

const (
	KindInterval Kind = iota
	KindCron
)

// MinInterval is the shortest accepted fixed interval.
const MinInterval = time.Second

// Spec is a normalized poll schedule.
type Spec struct {
	Kind  Kind
	Cron  string        // KindCron
	Every time.Duration // KindInterval
}

func (s Spec) String() string {
	if s.Kind == KindCron {
		return "cron:" + s.Cron
	}
	return s.Every.String()
}

// ParseSpec accepts
//   - a Go duration: "10m", "1h30m"
//   - HH:MM read as an interval: "00:10" is ten minutes
//   - a cron expression or descriptor: "*/10 * * * *", "@every 10m"
//
// The prefixes "cron:", "every:" and "interval:" force the interpretation.
func ParseSpec(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{}, errors.New("schedule is empty")
	}

	if rest, ok := cutPrefixFold(s, "cron:"); ok {
		if rest == "" {
			return Spec{}, errors.New("cron: needs an expression")
		}
		return Spec{Kind: KindCron, Cron: rest}, nil
	}
	for _, p := range []string{"every:", "interval:"} {
		if rest, ok := cutPrefixFold(s, p); ok {
			return intervalSpec(rest)
		}
	}

	if s[0] == '@' || strings.ContainsAny(s, " \t") {
		return Spec{Kind: KindCron, Cron: s}, nil
	}
	spec, err := intervalSpec(s)
	if err != nil {
		return Spec{}, fmt.Errorf("schedule %q: want a duration (10m), HH:MM (00:10) or a cron expression: %w", raw, err)
	}
	return spec, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}

func intervalSpec(v string) (Spec, error) {
	v = strings.TrimSpace(v)

	var (
		d   time.Duration
		err error
	)
	if hh, mm, ok := strings.Cut(v, ":"); ok {
		d, err = clockDuration(hh, mm)
	} else {
		d, err = time.ParseDuration(v)
	}
	if err != nil {
		return Spec{}, err
	}
	if d < MinInterval {
		return Spec{}, fmt.Errorf("interval %s is shorter than %s", d, MinInterval)
	}
	return Spec{Kind: KindInterval, Every: d}, nil
}

// clockDuration reads "HH:MM" as hours and minutes.
func clockDuration(hh, mm string) (time.Duration, error) {
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil || h < 0 || len(mm) != 2 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid HH:MM %q", hh+":"+mm)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
