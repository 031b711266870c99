package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ============================================================================
// WATCHER — Reloads the dataset when its file changes on disk
// ============================================================================
// The parent directory is watched rather than the file itself, so editors
// that save by rename-over are still seen. Bursts of events are collapsed
// into one reload once the file has been quiet for the debounce window.
// ============================================================================

const defaultDebounce = 500 * time.Millisecond

// ReloadFunc is called after the watched file settles.
type ReloadFunc func(ctx context.Context) error

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Reloads       int
	Errors        int
	LastEventTime time.Time
	LastEventType string
}

// Watcher triggers a reload when one file changes.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	reload      ReloadFunc
	logger      *zap.Logger
	debounceDur time.Duration
	pendingAt   time.Time
	pending     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stopped     bool

	stats Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must be quiet before reloading.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDur = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Watcher for path. Nothing is watched until Start.
func New(path string, reload ReloadFunc, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		watcher:     fw,
		path:        abs,
		dir:         filepath.Dir(abs),
		reload:      reload,
		logger:      zap.NewNop(),
		debounceDur: defaultDebounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Start begins watching. It is non-blocking; the loop runs until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running || w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching dataset", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit. Safe to call twice.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	wasRunning := w.running
	w.running = false
	w.stopped = true
	w.mu.Unlock()

	close(w.stopCh)
	if wasRunning {
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing watcher", zap.Error(err))
	}
	w.logger.Debug("watcher stopped", zap.String("path", w.path))
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounceDur / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	case event.Op&fsnotify.Remove != 0:
		// Nothing to load until the file comes back.
		w.logger.Warn("dataset removed", zap.String("path", w.path))
		return
	default:
		return
	}

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventType = eventType
	w.pending = true
	w.pendingAt = time.Now()
	w.mu.Unlock()

	w.logger.Debug("dataset event", zap.String("op", eventType), zap.String("path", event.Name))
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	if !w.pending || time.Since(w.pendingAt) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.stats.Reloads++
	w.mu.Unlock()

	if err := w.reload(ctx); err != nil {
		w.logger.Warn("reload after change failed", zap.String("path", w.path), zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
	}
}
