// Package mockserver is an in-memory implementation of the catalog HTTP API,
// used for local development and for end-to-end tests of the client.
package mockserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cineshelf/cineshelf/internal/constants"
	"github.com/cineshelf/cineshelf/internal/logging"
)

// Options configures a Server.
type Options struct {
	// Secret signs session tokens. A random secret is used when empty.
	Secret []byte

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration

	// RequestsPerSecond and Burst size the per-client limiter. Zero disables it.
	RequestsPerSecond float64
	Burst             int

	// Latency delays every API response.
	Latency time.Duration

	Logger *logging.Logger
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	store   *Store
	tokens  TokenService
	limiter *clientLimiter
	latency time.Duration
	logger  *logging.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the server around store.
func New(store *Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if len(opts.Secret) == 0 {
		opts.Secret = []byte(newID() + newID())
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = constants.MockTokenTTL
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		store: store,
		tokens: TokenService{
			Secret:   opts.Secret,
			Issuer:   "cineshelf-mock",
			Duration: opts.TokenTTL,
		},
		latency: opts.Latency,
		logger:  opts.Logger,
		router:  r,
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = newClientLimiter(opts.RequestsPerSecond, burst)
	}

	r.Use(s.logRequests)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		if s.latency > 0 {
			r.Use(s.delay)
		}

		r.Route("/movies", func(r chi.Router) {
			r.Get("/sorted", s.handleListSorted)
			r.Get("/search", s.handleSearch)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/", s.handleCreateMovie)
				r.Put("/{id}", s.handleUpdateMovie)
				r.Delete("/{id}", s.handleDeleteMovie)
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/signup", s.handleSignup)
		})
	})
}

// Handler returns the root handler. The API lives under /api.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Tokens returns the token service, for tests that need to mint tokens.
func (s *Server) Tokens() TokenService {
	return s.tokens
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.limiter != nil {
		go s.sweepLimiter(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.sweep(3 * time.Minute)
		}
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Msg("request")
	})
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(s.latency):
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
		}
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "movies": s.store.Len()})
}
