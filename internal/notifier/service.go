package notifier

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	kit "homeworkbot/internal/transport"
	logx "homeworkbot/pkg/logx"
)

var (
	// ErrDelivery wraps every failed send.
	ErrDelivery = errors.New("notification not delivered")
	// ErrNoTarget is returned when no chat destination is configured.
	ErrNoTarget = errors.New("notifier has no chat target")
)

const historySize = 50

// Service sends texts to one fixed chat. It is safe for concurrent use.
type Service struct {
	mu sync.Mutex

	log    logx.Logger
	sender kit.Sender
	now    func() time.Time

	cfg     Config
	limiter *rate.Limiter

	// key -> suppress until
	dedup map[string]time.Time

	history []HistoryItem
}

func New(cfg Config, sender kit.Sender, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		log:    log,
		sender: sender,
		now:    time.Now,
		dedup:  map[string]time.Time{},
	}
	s.applyLocked(cfg)
	return s
}

// Apply swaps the rate limit and dedup settings at runtime. The dedup memory
// is kept.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(cfg)
}

func (s *Service) applyLocked(cfg Config) {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 3
	}
	if cfg.DedupWindow < 0 {
		cfg.DedupWindow = 0
	}
	if cfg.DedupMaxEntries <= 0 {
		cfg.DedupMaxEntries = 500
	}
	s.cfg = cfg
	// burst = rate per sec, so short spikes don't block too hard.
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
}

// Notify delivers text to the configured chat. A text suppressed by the
// dedup window counts as delivered.
func (s *Service) Notify(ctx context.Context, text string) error {
	s.mu.Lock()
	cfg := s.cfg
	lim := s.limiter
	s.mu.Unlock()

	if cfg.Target.IsZero() || s.sender == nil {
		s.log.Error("message not sent", logx.Err(ErrNoTarget))
		return ErrNoTarget
	}

	key := dedupKey(cfg.Target, text)
	if s.suppressed(key, cfg) {
		s.log.Info("message suppressed (duplicate within dedup window)", logx.Duration("window", cfg.DedupWindow))
		return nil
	}

	if err := lim.Wait(ctx); err != nil {
		s.record(text, err)
		s.log.Error("message not sent", logx.Err(err))
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	ref, err := s.sender.SendText(ctx, cfg.Target, text, &kit.SendOptions{DisablePreview: cfg.DisablePreview})
	s.record(text, err)
	if err != nil {
		s.log.Error("message not sent", logx.Err(err))
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	s.remember(key, cfg)
	s.log.Info("message sent", logx.Int("message_id", ref.MessageID))
	return nil
}

// History returns recently attempted notifications, oldest first.
func (s *Service) History() []HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HistoryItem(nil), s.history...)
}

func (s *Service) record(text string, err error) {
	it := HistoryItem{At: s.now(), Text: text}
	if err != nil {
		it.Err = err.Error()
	}
	s.mu.Lock()
	s.history = append(s.history, it)
	if n := len(s.history) - historySize; n > 0 {
		s.history = append(s.history[:0:0], s.history[n:]...)
	}
	s.mu.Unlock()
}

func (s *Service) suppressed(key string, cfg Config) bool {
	if cfg.DedupWindow <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.dedup[key]
	return ok && s.now().Before(until)
}

func (s *Service) remember(key string, cfg Config) {
	if cfg.DedupWindow <= 0 {
		return
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.dedup) >= cfg.DedupMaxEntries {
		for k, until := range s.dedup {
			if !now.Before(until) {
				delete(s.dedup, k)
			}
		}
	}
	// Still full: drop an arbitrary entry.
	for k := range s.dedup {
		if len(s.dedup) < cfg.DedupMaxEntries {
			break
		}
		delete(s.dedup, k)
	}
	s.dedup[key] = now.Add(cfg.DedupWindow)
}

func dedupKey(to kit.ChatTarget, text string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return strconv.FormatInt(to.ChatID, 10) + "|" + to.Username + "|" + strconv.Itoa(to.ThreadID) + "|" + strconv.FormatUint(h.Sum64(), 16)
}
