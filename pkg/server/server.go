package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/signup/pkg/auth"
	"github.com/vango-dev/signup/pkg/guard"
	"github.com/vango-dev/signup/pkg/middleware"
	"github.com/vango-dev/signup/pkg/responses"
	"github.com/vango-dev/signup/pkg/signup"
)

// Route paths.
const (
	PathHome    = "/"
	PathSignup  = "/signup"
	PathLive    = "/signup/live"
	PathHealth  = "/healthz"
	PathMetrics = "/metrics"
)

// Config holds server settings.
type Config struct {
	// Address is the listen address (default ":3000").
	Address string

	// RedirectTarget is where signed-in users are sent (default "/").
	RedirectTarget string

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	// LiveReadTimeout bounds the wait for the next live message or pong.
	LiveReadTimeout time.Duration
	// LiveWriteTimeout bounds each live write.
	LiveWriteTimeout time.Duration

	// CheckOrigin validates live channel upgrades. Nil allows same-origin
	// requests only.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Address:           ":3000",
		RedirectTarget:    guard.DefaultTarget,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		LiveReadTimeout:   60 * time.Second,
		LiveWriteTimeout:  10 * time.Second,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithConfig replaces the configuration. Zero fields keep their defaults.
func WithConfig(c Config) Option {
	return func(s *Server) {
		d := s.config
		if c.Address == "" {
			c.Address = d.Address
		}
		if c.RedirectTarget == "" {
			c.RedirectTarget = d.RedirectTarget
		}
		if c.ReadHeaderTimeout == 0 {
			c.ReadHeaderTimeout = d.ReadHeaderTimeout
		}
		if c.ShutdownTimeout == 0 {
			c.ShutdownTimeout = d.ShutdownTimeout
		}
		if c.LiveReadTimeout == 0 {
			c.LiveReadTimeout = d.LiveReadTimeout
		}
		if c.LiveWriteTimeout == 0 {
			c.LiveWriteTimeout = d.LiveWriteTimeout
		}
		s.config = c
	}
}

// WithProvider sets the current-user provider. Without one every visitor
// is anonymous.
func WithProvider(p auth.Provider) Option {
	return func(s *Server) {
		s.provider = p
	}
}

// WithMetrics enables request and submission metrics, and serves gatherer
// on /metrics.
func WithMetrics(m *middleware.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithTracing enables OpenTelemetry request spans.
func WithTracing(opts ...middleware.OTelOption) Option {
	return func(s *Server) {
		s.tracing = true
		s.otelOpts = opts
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithControllerOptions adds options applied to every signup controller.
func WithControllerOptions(opts ...signup.Option) Option {
	return func(s *Server) {
		s.controllerOpts = append(s.controllerOpts, opts...)
	}
}

// WithRenderer replaces the page renderer.
func WithRenderer(r *Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// Server serves the signup page.
type Server struct {
	config         Config
	service        auth.Service
	table          *responses.Table
	provider       auth.Provider
	metrics        *middleware.Metrics
	gatherer       prometheus.Gatherer
	tracing        bool
	otelOpts       []middleware.OTelOption
	controllerOpts []signup.Option
	renderer       *Renderer
	upgrader       websocket.Upgrader
	logger         *slog.Logger

	router     chi.Router
	httpServer *http.Server
}

// New creates a server. It returns an error only when the embedded
// templates cannot be loaded.
func New(service auth.Service, table *responses.Table, opts ...Option) (*Server, error) {
	if table == nil {
		table = responses.Default()
	}
	s := &Server{
		config:  DefaultConfig(),
		service: service,
		table:   table,
		logger:  slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.renderer == nil {
		r, err := NewRenderer(nil)
		if err != nil {
			return nil, err
		}
		s.renderer = r
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.config.CheckOrigin,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	if s.tracing {
		r.Use(middleware.OpenTelemetry(s.otelOpts...))
	}
	if s.metrics != nil {
		r.Use(s.metrics.Handler)
	}

	r.Get(PathHealth, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, PathMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if s.provider != nil {
			r.Use(s.provider.Middleware())
		}
		r.Get(PathHome, s.handleHome)

		r.Group(func(r chi.Router) {
			r.Use(guard.RedirectIfAuthenticated(s.provider, s.config.RedirectTarget))
			r.Get(PathSignup, s.handleSignupPage)
			r.Post(PathSignup, s.handleSignupSubmit)
			r.Get(PathLive, s.handleLive)
		})
	})

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts the server and blocks until ctx is cancelled or the listener
// fails. Cancellation triggers a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.WithoutCancel(ctx))
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Config returns the server configuration.
func (s *Server) Config() Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

func (s *Server) newController(logger *slog.Logger) *signup.Controller {
	opts := make([]signup.Option, 0, len(s.controllerOpts)+2)
	opts = append(opts, signup.WithLogger(logger))
	if s.metrics != nil {
		opts = append(opts, signup.WithMetrics(s.metrics))
	}
	opts = append(opts, s.controllerOpts...)
	return signup.New(s.service, s.table, opts...)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
