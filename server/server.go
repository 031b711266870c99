package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spektr-org/agriclimate/engine"
)

// Datasets is what the server reads from and reloads. *store.Store satisfies it.
type Datasets interface {
	Current() *engine.Dataset
	Reload(ctx context.Context) (*engine.Dataset, error)
	Status() (loadedAt time.Time, lastErr error)
}

// ServerOption configures optional Server behavior.
type ServerOption func(*Server)

// WithLogger sets the logger used for request and error logs.
func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngineOptions passes chart options (size, palette) to engine.Execute.
func WithEngineOptions(opts ...engine.Option) ServerOption {
	return func(s *Server) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// Server holds the chi router and the dataset source.
type Server struct {
	router     chi.Router
	data       Datasets
	logger     *zap.Logger
	engineOpts []engine.Option
}

// NewServer creates a Server with all routes configured.
func NewServer(data Datasets, opts ...ServerOption) *Server {
	s := &Server{
		data:   data,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engineOpts = append([]engine.Option{engine.WithLogger(s.logger)}, s.engineOpts...)
	s.router = s.buildRouter()
	return s
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/countries", s.handleCountries)
		r.Get("/views", s.handleViews)
		r.Get("/export.xlsx", s.handleWorkbook)
		r.Post("/reload", s.handleReload)

		r.Route("/views/{view}", func(r chi.Router) {
			r.Get("/", s.handleView)
			r.Get("/chart.{format}", s.handleChart)
			r.Get("/data.csv", s.handleCSV)
		})
	})

	return r
}

// ServeHTTP implements the http.Handler interface, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
