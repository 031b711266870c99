package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spektr-org/agriclimate/engine"
	"github.com/spektr-org/agriclimate/helpers"
	"github.com/spektr-org/agriclimate/schema"
)

// ============================================================================
// STORE — The current immutable Dataset
// ============================================================================
// Reload runs Load → Parse → Build off the lock and installs the result only
// if no newer reload has been installed meanwhile. Readers always see a
// complete Dataset or nil; a failed reload leaves the prior one in place.
// ============================================================================

// ErrSuperseded reports a reload that finished after a newer one was installed.
var ErrSuperseded = errors.New("reload superseded by a newer one")

// Fetcher returns the raw dataset bytes for source.
type Fetcher func(ctx context.Context, source string) ([]byte, error)

// Store holds the most recently loaded Dataset.
type Store struct {
	source string
	schema schema.Schema
	fetch  Fetcher
	logger *zap.Logger
	engine []engine.Option

	tickets atomic.Uint64

	mu        sync.RWMutex
	current   *engine.Dataset
	installed uint64
	lastErr   error
	lastLoad  time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithFetcher replaces helpers.Load as the byte source.
func WithFetcher(f Fetcher) Option {
	return func(s *Store) {
		if f != nil {
			s.fetch = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngineOptions passes options through to engine.Build.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Store) {
		s.engine = append(s.engine, opts...)
	}
}

// New creates an empty Store for source parsed with sch.
func New(source string, sch schema.Schema, opts ...Option) *Store {
	s := &Store{
		source: source,
		schema: sch,
		fetch:  helpers.Load,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source is the configured dataset location.
func (s *Store) Source() string { return s.source }

// Schema is the configured column schema.
func (s *Store) Schema() schema.Schema { return s.schema }

// Current returns the installed Dataset, or nil before the first success.
func (s *Store) Current() *engine.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Status reports the last reload error and when the current dataset loaded.
func (s *Store) Status() (loadedAt time.Time, lastErr error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastLoad, s.lastErr
}

// Reload fetches, parses and aggregates the source, then installs it.
func (s *Store) Reload(ctx context.Context) (*engine.Dataset, error) {
	ticket := s.tickets.Add(1)
	log := s.logger.With(zap.String("source", s.source), zap.Uint64("ticket", ticket))

	ds, err := s.build(ctx)
	if err != nil {
		s.mu.Lock()
		if ticket > s.installed {
			s.lastErr = err
		}
		s.mu.Unlock()
		log.Error("dataset reload failed, keeping previous", zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	if ticket < s.installed {
		s.mu.Unlock()
		log.Info("discarding stale reload", zap.String("dataset", ds.ID))
		return nil, ErrSuperseded
	}
	s.current = ds
	s.installed = ticket
	s.lastErr = nil
	s.lastLoad = ds.LoadedAt
	s.mu.Unlock()

	stats := ds.Stats()
	log.Info("dataset loaded",
		zap.String("dataset", ds.ID),
		zap.Int("rows", stats[engine.ViewAdaptation].Rows),
		zap.Int("adaptation", stats[engine.ViewAdaptation].Accepted),
		zap.Int("economic", stats[engine.ViewEconomic].Accepted),
		zap.Int("emissions", stats[engine.ViewEmissions].Accepted),
	)
	return ds, nil
}

func (s *Store) build(ctx context.Context) (*engine.Dataset, error) {
	data, err := s.fetch(ctx, s.source)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := helpers.Parse(data, s.schema)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.source, err)
	}
	if parsed.Malformed > 0 {
		s.logger.Warn("skipped malformed lines",
			zap.String("source", s.source),
			zap.Int("lines", parsed.Malformed),
		)
	}

	opts := append([]engine.Option{
		engine.WithSource(s.source),
		engine.WithLogger(s.logger),
	}, s.engine...)
	return engine.Build(parsed.Records, opts...), nil
}
