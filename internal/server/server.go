// Package server exposes the render engine over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/alnah/go-slidecast"
	"github.com/alnah/go-slidecast/internal/config"
)

// Engine is the part of slidecast.Engine the server drives.
type Engine interface {
	RenderImage(ctx context.Context, req slidecast.RenderRequest) ([]byte, error)
	RenderVideo(ctx context.Context, job slidecast.VideoJob) ([]byte, error)
	Templates(ctx context.Context) ([]slidecast.Template, error)
	CheckEncoder(ctx context.Context) (string, error)
}

// Compile-time interface check
var _ Engine = (*slidecast.Engine)(nil)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
	healthTimeout     = 5 * time.Second
	rateWindow        = time.Minute
)

// Server serves the render API.
type Server struct {
	engine   Engine
	cfg      config.ServerConfig
	defaults slidecast.VideoJob
	logger   zerolog.Logger
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithVideoDefaults sets the options applied to video jobs that leave
// them unset.
func WithVideoDefaults(job slidecast.VideoJob) Option {
	return func(s *Server) {
		s.defaults = job
	}
}

// New builds a server over engine.
func New(engine Engine, cfg config.ServerConfig, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Use(requestID)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/templates", s.handleTemplates)

		r.Group(func(r chi.Router) {
			if s.cfg.RateLimit > 0 {
				r.Use(rateLimit(s.cfg.RateLimit, rateWindow))
			}
			if s.cfg.MaxBodyBytes > 0 {
				r.Use(bodyLimit(s.cfg.MaxBodyBytes))
			}
			r.Post("/render", s.handleRender)
			r.Post("/video", s.handleVideo)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, codeNotFound, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, r.Method+" not allowed")
	})
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is canceled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
