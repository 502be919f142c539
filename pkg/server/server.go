package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ngclient/ngutils/pkg/middleware"
	"github.com/ngclient/ngutils/pkg/render"
	"github.com/ngclient/ngutils/pkg/snapshot"
)

// Server serves the page model API and the watch feed.
type Server struct {
	config   *ServerConfig
	clients  *ClientManager
	renderer *render.Renderer
	upgrader websocket.Upgrader
	router   chi.Router

	store    snapshot.Store
	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer
	tracing  []middleware.OTelOption
	traced   bool

	httpServer *http.Server
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables snapshots: clients are restored on first use and saved
// when closed.
func WithStore(store snapshot.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMetrics records API and model metrics and serves them on /metrics.
// A nil gatherer serves prometheus.DefaultGatherer.
func WithMetrics(m *middleware.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
		if gatherer == nil {
			s.gatherer = prometheus.DefaultGatherer
		}
	}
}

// WithTracing opens an OpenTelemetry span per request.
func WithTracing(opts ...middleware.OTelOption) Option {
	return func(s *Server) {
		s.traced = true
		s.tracing = opts
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new Server with the given configuration.
func New(config *ServerConfig, opts ...Option) *Server {
	s := &Server{
		config:   config.withDefaults(),
		renderer: render.NewRenderer(render.RendererConfig{Mark: true}),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	s.clients = NewClientManager(s.store, s.metrics, s.config.WatchWriteWait, s.logger)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  s.config.ReadBufferSize,
		WriteBufferSize: s.config.WriteBufferSize,
		CheckOrigin:     s.config.CheckOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Handler)
	}
	if s.traced {
		r.Use(middleware.OpenTelemetry(s.tracing...))
	}

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/clients/{clientID}", func(r chi.Router) {
		r.Get("/model", s.handleModel)
		r.Get("/head", s.handleHead)
		r.Get("/page", s.handlePage)
		r.Put("/tags", s.handleReplaceTag)
		r.Post("/viewport", s.handleViewport)
		r.Post("/cleanup", s.handleCleanup)
		r.Get("/styleclasses/{form}", s.handleGetStyleClass)
		r.Post("/styleclasses/{form}", s.handleAddStyleClass)
		r.Delete("/styleclasses/{form}/{class}", s.handleRemoveStyleClass)
		r.Get("/watch", s.handleWatch)
		r.Delete("/", s.handleClose)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	})
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Clients returns the client manager.
func (s *Server) Clients() *ClientManager {
	return s.clients
}

// Config returns the effective configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Run listens on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.WithoutCancel(ctx))
	}
}

// Shutdown stops accepting requests, then snapshots and closes all clients.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			errs = append(errs, err)
		}
	}
	if err := s.clients.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	s.logger.Info("server shutdown complete")
	return stderrors.Join(errs...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.clients.Len(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
