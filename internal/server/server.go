package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/leap-ai/ozone/internal/handler"
	"github.com/leap-ai/ozone/internal/openapi"
	"github.com/leap-ai/ozone/internal/server/middleware"
	"github.com/leap-ai/ozone/internal/service"
	"github.com/leap-ai/ozone/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	PublicRateLimit int           // requests per PublicRateWindow, per IP, on public POST endpoints
	PublicRateWin   time.Duration // window for PublicRateLimit
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		PublicRateLimit: 30,
		PublicRateWin:   time.Minute,
	}
}

// Server is the top-level HTTP server for Ozone. It owns the Chi router,
// the store, and the key and session services, and mounts the gateway,
// the dashboard API, and the public site endpoints.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	keySvc     *service.KeyService
	authSvc    *service.AuthService
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, keySvc *service.KeyService, authSvc *service.AuthService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		keySvc:  keySvc,
		authSvc: authSvc,
		logger:  logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "x-api-key", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	gateway := handler.NewGateway(s.store, s.logger)
	dashboard := handler.NewDashboard(s.keySvc, s.authSvc, s.store, s.logger)
	site := handler.NewSite(s.store, s.logger)
	system := handler.NewSystem(s.store)

	// --- Health checks (no auth required) ---
	r.Get("/healthz", system.Healthz)
	r.Get("/readyz", system.Readyz)

	// --- OpenAPI spec (no auth required) ---
	r.Get("/openapi.json", openapi.NewHandler(gateway.EndpointNames()).ServeSpec)

	// --- External data gateway ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.keySvc))
		r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
			gateway.Handle(w, req, "")
		})
		r.HandleFunc("/{endpoint}", func(w http.ResponseWriter, req *http.Request) {
			gateway.Handle(w, req, chi.URLParam(req, "endpoint"))
		})
		// Nested paths still get the endpoint listing, not a bare 404.
		r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
			gateway.Handle(w, req, chi.URLParam(req, "*"))
		})
	})

	// --- Site and dashboard API ---
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints, IP rate limited.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(s.cfg.PublicRateLimit, s.cfg.PublicRateWin))
			r.Post("/auth/login", dashboard.Login)
			r.Post("/newsletter", site.Subscribe)
			r.Post("/contact", site.Contact)
		})

		// Account endpoints behind the session token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(s.authSvc))
			r.Get("/keys", dashboard.ListKeys)
			r.Post("/keys", dashboard.CreateKey)
			r.Delete("/keys/{keyID}", dashboard.RevokeKey)
			r.Get("/requests", dashboard.ListRequests)
		})
	})

	s.router = r
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the database.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.store.Close()
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
