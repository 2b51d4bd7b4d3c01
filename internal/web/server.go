// Package web provides the HTTP server and handlers for the OTC dashboard.
package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/otc/internal/config"
	"github.com/JonMunkholm/otc/internal/core"
	"github.com/JonMunkholm/otc/internal/web/middleware"
)

// Dashboard is the business API the handlers call. *core.Service
// implements it.
type Dashboard interface {
	SearchOrders(ctx context.Context, f core.OrderFilter) (*core.OrderPage, error)
	FilterOptions(ctx context.Context) (core.FilterOptions, error)
	DeleteOrders(ctx context.Context, ids []int64, confirmed bool) (int64, error)

	StartImport(ctx context.Context, fileName string, r io.Reader) (core.ImportTicket, error)
	SubscribeProgress(importID string) (<-chan core.ImportProgress, error)
	GetImportResult(ctx context.Context, importID string) (*core.ImportResult, error)
	ImportLimiterStatus() core.ImportLimiterStatus

	ListProjectSettings(ctx context.Context) ([]core.ProjectSetting, error)
	SwitchCalculationMethod(ctx context.Context, projectUUID string, method core.CalculationMethod) error
	RefreshAnalyticsViews(ctx context.Context) error

	Metrics() *core.Metrics
}

// Server is the HTTP server for the dashboard.
type Server struct {
	service Dashboard
	cfg     *config.Config
	ping    func(context.Context) error
	router  *chi.Mux
	server  *http.Server

	// stop ends the rate limiter cleanup loops.
	stop context.CancelFunc
}

// NewServer creates a Server. ping, when non-nil, is called by /healthz.
func NewServer(service Dashboard, cfg *config.Config, ping func(context.Context) error) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		ping:    ping,
		router:  chi.NewRouter(),
		stop:    func() {},
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.startCleanup(limiter)
		s.router.Use(limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	timeout := func(next http.Handler) http.Handler { return next }
	if d := s.cfg.Server.RequestTimeout; d > 0 {
		timeout = chimw.Timeout(d)
	}

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.service.Metrics().Handler())

	// Pages
	s.router.Group(func(r chi.Router) {
		r.Use(timeout)
		r.Get("/", s.handleOrdersPage)
		r.Get("/projects", s.handleProjectsPage)
	})

	var uploads func(http.Handler) http.Handler
	if s.cfg.Rate.Enabled {
		rl := newRateLimiter(s.cfg.Rate.UploadLimit, 1)
		s.startCleanup(rl)
		uploads = rl.middleware
	}

	// Headless clients use /api, guarded by API keys. The dashboard pages
	// call the same handlers under /ui.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))
		s.endpoints(r, timeout, uploads)
	})
	s.router.Route("/ui", func(r chi.Router) {
		s.endpoints(r, timeout, uploads)
	})
}

func (s *Server) endpoints(r chi.Router, timeout, uploads func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(timeout)

		r.Get("/orders", s.handleSearchOrders)
		r.Get("/orders/filters", s.handleFilterOptions)
		r.Post("/orders/delete", s.handleDeleteOrders)

		r.Get("/import/{importID}/result", s.handleImportResult)

		r.Get("/projects", s.handleListProjects)
		r.Post("/projects/{projectUUID}/calculation-method", s.handleSwitchMethod)
		r.Post("/analytics/refresh", s.handleRefreshAnalytics)
	})

	// Upload parsing is bounded by the body limit, not the request timeout.
	r.Group(func(r chi.Router) {
		if uploads != nil {
			r.Use(uploads)
		}
		r.Post("/import", s.handleImport)
	})

	// Server-Sent Events stay open for the whole import.
	r.Get("/import/{importID}/progress", s.handleImportProgress)
}

func (s *Server) startCleanup(rl *rateLimiter) {
	ctx, cancel := context.WithCancel(context.Background())
	prev := s.stop
	s.stop = func() {
		prev()
		cancel()
	}
	go rl.cleanup(ctx)
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// Pages carry their script and style inline.
				h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}
