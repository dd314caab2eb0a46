// Package schedule turns the configured poll interval into a cron.Schedule.
// Nothing here starts goroutines: the poll loop asks for the next tick
// itself so cycles stay sequential.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Build evaluates cron expressions in loc (UTC when nil).
func Build(spec Spec, loc *time.Location) (cron.Schedule, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch spec.Kind {
	case KindInterval:
		if spec.Every < MinInterval {
			return nil, fmt.Errorf("interval %s is shorter than %s", spec.Every, MinInterval)
		}
		return cron.Every(spec.Every), nil
	case KindCron:
		s, err := cronParser.Parse(spec.Cron)
		if err != nil {
			return nil, fmt.Errorf("cron %q: %w", spec.Cron, err)
		}
		if ss, ok := s.(*cron.SpecSchedule); ok {
			ss.Location = loc
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown schedule kind %d", spec.Kind)
}

// Parse is ParseSpec followed by Build in the named IANA timezone.
func Parse(raw, timezone string) (cron.Schedule, Spec, error) {
	spec, err := ParseSpec(raw)
	if err != nil {
		return nil, Spec{}, err
	}
	loc := time.UTC
	if timezone != "" {
		if loc, err = time.LoadLocation(timezone); err != nil {
			return nil, Spec{}, err
		}
	}
	s, err := Build(spec, loc)
	if err != nil {
		return nil, Spec{}, err
	}
	return s, spec, nil
}

// Delay is how long to wait after now for the next tick of s.
func Delay(s cron.Schedule, now time.Time) time.Duration {
	next := s.Next(now)
	if next.IsZero() {
		return 0
	}
	return max(next.Sub(now), 0)
}
