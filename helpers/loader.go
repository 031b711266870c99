package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// LOADER — Fetches the raw dataset bytes
// ============================================================================
// A source is either a local path or an http(s) URL. The loader never
// interprets the bytes; ParseCSV does that.
// ============================================================================

// ErrLoad wraps every failure to obtain the dataset bytes.
var ErrLoad = errors.New("load dataset")

const (
	defaultLoadTimeout = 30 * time.Second
	defaultMaxBytes    = 64 << 20
)

// Loader reads dataset bytes from disk or over HTTP.
type Loader struct {
	client   *http.Client
	maxBytes int64
	logger   *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient replaces the HTTP client used for URL sources.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithTimeout sets the HTTP timeout for URL sources.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.client = &http.Client{Timeout: d}
		}
	}
}

// WithMaxBytes caps how much is read from a source.
func WithMaxBytes(n int64) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: defaultLoadTimeout},
		maxBytes: defaultMaxBytes,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads source with a default Loader.
func Load(ctx context.Context, source string) ([]byte, error) {
	return NewLoader().Load(ctx, source)
}

// IsURL reports whether source should be fetched over HTTP.
func IsURL(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load returns the full contents of source.
func (l *Loader) Load(ctx context.Context, source string) ([]byte, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: empty source", ErrLoad)
	}

	start := time.Now()
	var (
		data []byte
		err  error
	)
	if IsURL(source) {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = l.readFile(source)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loaded dataset",
		zap.String("source", source),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)),
	)
	return data, nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer f.Close()

	data, err := l.readAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrLoad, path, err)
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrLoad, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrLoad, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrLoad, url, resp.StatusCode)
	}

	data, err := l.readAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body of %s: %w", ErrLoad, url, err)
	}
	return data, nil
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("source exceeds %d bytes", l.maxBytes)
	}
	return data, nil
}
