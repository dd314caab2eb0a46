package config

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "homeworkbot/pkg/logx"
)

const (
	settleDelay = 250 * time.Millisecond
	retryMin    = 250 * time.Millisecond
	retryMax    = 5 * time.Second
)

// Manager owns the current Config and, when watching, republishes it to
// subscribers each time the file changes to something new and valid.
type Manager struct {
	path string
	log  logx.Logger

	mu   sync.RWMutex
	cfg  *Config
	hash uint64

	subMu  sync.Mutex
	subs   map[uint64]chan *Config
	nextID uint64
}

// NewManager returns a manager for path. A blank path means built-in
// defaults and nothing to watch.
func NewManager(path string) *Manager {
	return &Manager{
		path: strings.TrimSpace(path),
		log:  logx.Nop(),
		subs: make(map[uint64]chan *Config),
	}
}

func (m *Manager) SetLogger(log logx.Logger) { m.log = log }

func (m *Manager) Path() string { return m.path }

// Get returns the last committed config. Treat it as read-only.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Load reads, validates and commits the config.
func (m *Manager) Load() (*Config, error) {
	cfg, err := m.read()
	if err != nil {
		return nil, err
	}
	m.commit(cfg, fingerprint(cfg))
	return cfg, nil
}

func (m *Manager) read() (*Config, error) {
	if m.path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	return Decode(m.path, data)
}

func (m *Manager) commit(cfg *Config, hash uint64) {
	m.mu.Lock()
	m.cfg, m.hash = cfg, hash
	m.mu.Unlock()
}

func fingerprint(cfg *Config) uint64 {
	b, err := json.Marshal(cfg)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

// Subscribe returns a channel that receives each newly committed config and a
// func that closes it. A slow subscriber only ever sees the latest config.
func (m *Manager) Subscribe(buffer int) (<-chan *Config, func()) {
	ch := make(chan *Config, max(buffer, 1))

	m.subMu.Lock()
	m.nextID++
	id := m.nextID
	m.subs[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
			close(ch)
		})
	}
}

func (m *Manager) publish(cfg *Config) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs {
		for {
			select {
			case ch <- cfg:
			default:
				// full: drop the stale head and retry
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

func (m *Manager) reload() {
	cfg, err := m.read()
	if err != nil {
		m.log.Warn("config rejected", logx.String("path", m.path), logx.Err(err))
		return
	}
	h := fingerprint(cfg)
	m.mu.RLock()
	same := h != 0 && h == m.hash
	m.mu.RUnlock()
	if same {
		m.log.Debug("config unchanged", logx.String("path", m.path))
		return
	}
	m.commit(cfg, h)
	m.publish(cfg)
	m.log.Info("config reloaded", logx.String("path", m.path))
}

// Watch reloads the config file on change until ctx is done. Bursts of
// events are coalesced into one reload after they settle. A broken watcher
// is recreated after a jittered, growing delay.
func (m *Manager) Watch(ctx context.Context) error {
	if m.path == "" {
		return nil
	}
	retry := retryMin
	for {
		err := m.watchOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		wait := retry + rand.N(retry/2+1)
		retry = min(retry*2, retryMax)
		m.log.Warn("config watcher restarting", logx.Err(err), logx.Duration("backoff", wait))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

var errWatcherClosed = errors.New("watcher closed")

// watchOnce runs one fsnotify watcher on the config's directory. It returns
// when ctx is done or the watcher fails.
func (m *Manager) watchOnce(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir, name := filepath.Split(m.path)
	if dir == "" {
		dir = "."
	}
	if err := w.Add(dir); err != nil {
		return err
	}
	m.log.Debug("config watcher started", logx.String("dir", dir), logx.String("file", name))

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-settle.C:
			m.reload()
		case ev, ok := <-w.Events:
			if !ok {
				return errWatcherClosed
			}
			if strings.EqualFold(filepath.Base(ev.Name), name) && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				settle.Reset(settleDelay)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errWatcherClosed
			}
			m.log.Warn("config watch error", logx.Err(err))
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				settle.Reset(settleDelay)
			}
		}
	}
}
