package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtrack/internal/abtest"
	"github.com/emiliopalmerini/abtrack/internal/adapters/prometheus"
	"github.com/emiliopalmerini/abtrack/internal/ports"
)

// StoreFactory returns the key/value store for one identity namespace.
type StoreFactory func(namespace string) ports.KeyValueStore

type Server struct {
	router          *http.ServeMux
	port            int
	logger          *zap.Logger
	registry        ports.ExperimentRegistry
	events          ports.EventRepository
	stores          StoreFactory
	dispatcher      *abtest.Dispatcher
	metrics         *prometheus.Metrics
	now             func() time.Time
	shutdownTimeout time.Duration
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithDispatcher forwards ingested events to server-side sinks.
func WithDispatcher(d *abtest.Dispatcher) Option {
	return func(s *Server) { s.dispatcher = d }
}

func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

func NewServer(
	port int,
	registry ports.ExperimentRegistry,
	events ports.EventRepository,
	stores StoreFactory,
	opts ...Option,
) *Server {
	s := &Server{
		router:          http.NewServeMux(),
		port:            port,
		logger:          zap.NewNop(),
		registry:        registry,
		events:          events,
		stores:          stores,
		now:             time.Now,
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("GET /metrics", s.metrics.Handler())

	// Pages
	s.router.HandleFunc("GET /experiments", s.handleExperiments)

	// API
	s.router.HandleFunc("GET /api/experiments", s.handleAPIExperiments)
	s.router.HandleFunc("POST /api/ab-test/track", s.handleTrack)
	s.router.HandleFunc("GET /api/ab-test/track", s.handleResults)
	s.router.HandleFunc("GET /api/ab-test/variant", s.handleVariant)
}

// Handler returns the router wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return chain(s.router,
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
	)
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", zap.String("addr", fmt.Sprintf("http://localhost:%d", s.port)))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
