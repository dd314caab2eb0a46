// Package poller runs the fetch-validate-render-notify cycle on the
// configured interval.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"homeworkbot/internal/homework"
	"homeworkbot/internal/schedule"
	logx "homeworkbot/pkg/logx"
)

// FailurePrefix starts every failure report sent to the chat.
const FailurePrefix = "Program failure: "

// Loop owns the poll state. It is not safe for concurrent use; Run is the
// only goroutine touching it.
type Loop struct {
	api   Fetcher
	notif Notifier
	log   logx.Logger
	rep   StatusReporter

	interval Interval
	updates  <-chan Interval

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	state State
}

type Option func(*Loop)

func WithClock(now func() time.Time) Option { return func(l *Loop) { l.now = now } }

// WithAfter replaces time.After for the sleep between cycles.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(l *Loop) { l.after = after }
}

func WithReporter(rep StatusReporter) Option { return func(l *Loop) { l.rep = rep } }

// WithIntervalUpdates lets a new interval take effect at the next sleep.
func WithIntervalUpdates(ch <-chan Interval) Option { return func(l *Loop) { l.updates = ch } }

func New(interval Interval, api Fetcher, notif Notifier, log logx.Logger, opts ...Option) (*Loop, error) {
	if interval.Schedule == nil {
		return nil, errors.New("poll interval is not set")
	}
	if api == nil || notif == nil {
		return nil, errors.New("fetcher and notifier are required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	l := &Loop{
		api:      api,
		notif:    notif,
		log:      log,
		interval: interval,
		now:      time.Now,
		after:    time.After,
		state:    State{Statuses: map[string]homework.Status{}},
	}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// State returns a copy of the loop state.
func (l *Loop) State() State {
	cp := State{Timestamp: l.state.Timestamp, Statuses: make(map[string]homework.Status, len(l.state.Statuses))}
	for k, v := range l.state.Statuses {
		cp.Statuses[k] = v
	}
	return cp
}

// Run polls until ctx is cancelled. A failed cycle is reported to the chat
// and logged; it never stops the loop.
func (l *Loop) Run(ctx context.Context) error {
	if l.state.Timestamp == 0 {
		l.state.Timestamp = l.now().Unix()
	}
	l.log.Info("poll loop started", logx.String("interval", l.interval.Spec), logx.Int64("from_date", l.state.Timestamp))

	for {
		err := l.RunCycle(ctx)
		if ctx.Err() != nil {
			l.log.Info("poll loop stopped")
			return nil
		}
		if err != nil {
			l.reportFailure(ctx, err)
			l.report("last cycle failed: " + err.Error())
		} else {
			l.report("last cycle ok at " + l.now().Format(time.RFC3339))
		}

		if !l.sleep(ctx) {
			l.log.Info("poll loop stopped")
			return nil
		}
	}
}

// RunCycle performs one fetch-validate-render-notify pass.
//
// Records whose status did not change since the last observation are only
// logged. A record that cannot be rendered is skipped; all such errors are
// returned joined after the remaining records were processed.
func (l *Loop) RunCycle(ctx context.Context) error {
	log := l.log.With(logx.String("cycle", uuid.NewString()))
	started := l.now()

	log.Debug("fetching", logx.Int64("from_date", l.state.Timestamp))
	resp, err := l.api.Fetch(ctx, l.state.Timestamp)
	if err != nil {
		return fmt.Errorf("fetch homework statuses: %w", err)
	}

	log.Debug("validating")
	records, err := homework.Validate(resp)
	if err != nil {
		return fmt.Errorf("check api response: %w", err)
	}

	next := started.Unix()
	if ts, ok := resp.CurrentDate(); ok {
		next = ts
	}

	if len(records) == 0 {
		l.state.Timestamp = next
		log.Info("no new submissions")
		return nil
	}

	var (
		errs        []error
		undelivered bool
	)
	for _, rec := range records {
		key := rec.Key()
		if prev, seen := l.state.Statuses[key]; seen && prev == rec.Status {
			log.Info("homework not yet reviewed, retrying in "+l.interval.Spec,
				logx.String("homework", key), logx.String("status", string(rec.Status)))
			continue
		}

		log.Debug("rendering", logx.String("homework", key))
		msg, err := homework.Render(rec)
		if err != nil {
			log.Error("cannot render homework status", logx.String("homework", key), logx.Err(err))
			errs = append(errs, err)
			continue
		}

		log.Debug("notifying", logx.String("homework", key))
		if err := l.notif.Notify(ctx, msg); err != nil {
			// Unrecorded, and the window stays put so the next fetch returns it again.
			log.Warn("status change not delivered", logx.String("homework", key), logx.Err(err))
			undelivered = true
			continue
		}
		l.state.Statuses[key] = rec.Status
	}
	if !undelivered {
		l.state.Timestamp = next
	}
	return errors.Join(errs...)
}

func (l *Loop) reportFailure(ctx context.Context, err error) {
	msg := FailurePrefix + err.Error()
	if nerr := l.notif.Notify(ctx, msg); nerr != nil {
		l.log.Error("failure report not delivered", logx.Err(nerr))
	}
	l.log.Critical(msg, logx.Err(err))
}

func (l *Loop) report(s string) {
	if l.rep == nil {
		return
	}
	l.rep.Status(s)
	l.rep.Watchdog()
}

// sleep waits for the next tick. It returns false when ctx is done.
func (l *Loop) sleep(ctx context.Context) bool {
	for {
		d := schedule.Delay(l.interval.Schedule, l.now())
		l.log.Debug("sleeping", logx.Duration("for", d))
		select {
		case <-ctx.Done():
			return false
		case <-l.after(d):
			return true
		case iv, ok := <-l.updates:
			if !ok {
				l.updates = nil
				continue
			}
			if iv.Schedule == nil {
				continue
			}
			l.interval = iv
			l.log.Info("poll interval changed", logx.String("interval", iv.Spec))
		}
	}
}
