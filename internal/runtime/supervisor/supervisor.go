// Package supervisor runs the process's long-lived goroutines under one
// cancellable context and collects the first failure among them.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	logx "homeworkbot/pkg/logx"
)

// Supervisor starts named goroutines, recovers their panics and optionally
// cancels the shared context when one of them fails.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logx.Logger

	cancelOnErr bool

	mu      sync.Mutex
	err     error
	running int
	idle    chan struct{} // closed while running == 0
}

type Option func(*Supervisor)

func WithLogger(log logx.Logger) Option {
	return func(s *Supervisor) { s.log = log }
}

// WithCancelOnError cancels the shared context on the first goroutine error.
func WithCancelOnError(enabled bool) Option {
	return func(s *Supervisor) { s.cancelOnErr = enabled }
}

func New(parent context.Context, opts ...Option) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	s := &Supervisor{ctx: ctx, cancel: cancel, log: logx.Nop(), idle: make(chan struct{})}
	close(s.idle)
	for _, o := range opts {
		o(s)
	}
	return s
}

// Context is cancelled by Stop, by the parent, or by a failure when
// WithCancelOnError is set.
func (s *Supervisor) Context() context.Context { return s.ctx }

// Go runs fn in a new goroutine. Returning context.Canceled counts as a
// clean exit.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.running == 0 {
		s.idle = make(chan struct{})
	}
	s.running++
	s.mu.Unlock()

	log := s.log.With(logx.String("task", name))
	go func() {
		defer s.exit()
		defer func() {
			if r := recover(); r != nil {
				log.Error("task panicked", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
				s.record(fmt.Errorf("panic in %s: %v", name, r))
			}
		}()

		log.Debug("task started")
		err := fn(s.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("task failed", logx.Err(err))
			s.record(fmt.Errorf("%s: %w", name, err))
			return
		}
		log.Debug("task stopped")
	}()
}

// Go0 is Go for functions that cannot fail.
func (s *Supervisor) Go0(name string, fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	s.Go(name, func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
}

// Stop cancels the shared context and waits like Wait.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.cancel()
	return s.Wait(ctx)
}

// Wait blocks until no goroutine is running, then returns the first
// failure. It returns ctx.Err() if ctx ends first.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-idle:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Supervisor) exit() {
	s.mu.Lock()
	s.running--
	if s.running == 0 {
		close(s.idle)
	}
	s.mu.Unlock()
}

func (s *Supervisor) record(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	if s.cancelOnErr {
		s.cancel()
	}
}
