// Package webui serves the REST interface that drives the foresight
// pipeline: credential validation, book upload, analysis, table editing,
// appendix generation, and exports.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"foresight_backend/core"

	"go.uber.org/zap"
)

// AuthProvider gates the UI behind a login. Implemented by
// auth.Middleware; kept as an interface so the server does not import the
// auth package directly.
type AuthProvider interface {
	Middleware(next http.Handler) http.Handler
	LoginHandler() http.HandlerFunc
	LogoutHandler() http.HandlerFunc
}

// ServerConfig configures the Server.
type ServerConfig struct {
	// Port to listen on (default: 3000)
	Port int

	// Host to bind to (default: "localhost")
	Host string

	// ReadTimeout for HTTP requests (default: 60s, uploads included)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses. Generation calls stream nothing,
	// so this must exceed the generation timeout (default: 10m).
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration

	// SessionTTL bounds pipeline session lifetime (default: 24h)
	SessionTTL time.Duration

	// SweepInterval is how often expired sessions are evicted
	// (default: 10m)
	SweepInterval time.Duration

	// LogSkipPaths are paths excluded from request logging
	LogSkipPaths []string
}

// DefaultServerConfig returns a ServerConfig with the usual defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            3000,
		Host:            "localhost",
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		SessionTTL:      24 * time.Hour,
		SweepInterval:   10 * time.Minute,
		LogSkipPaths:    []string{"/health", "/api/status"},
	}
}

// Server is the HTTP server wiring sessions, the pipeline API, optional
// auth, and request logging together.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	config     ServerConfig
	sessions   *SessionStore
	api        *PipelineAPI
	authProv   AuthProvider
	loggingMw  *LoggingMiddleware
	logger     *zap.Logger
}

// NewServer creates a configured server. The authProvider may be nil for an
// open UI.
func NewServer(config ServerConfig, appCfg *core.Config, authProvider AuthProvider, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	sessions := NewSessionStore(appCfg, config.SessionTTL, logger)
	api := NewPipelineAPI(sessions, appCfg.MaxFileSize, logger)

	server := &Server{
		mux:       http.NewServeMux(),
		config:    config,
		sessions:  sessions,
		api:       api,
		authProv:  authProvider,
		loggingMw: NewLoggingMiddleware(logger, config.LogSkipPaths),
		logger:    logger,
	}
	server.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server.httpServer = &http.Server{
		Addr:         addr,
		Handler:      server.rootHandler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	logger.Info("web server created",
		zap.String("addr", addr),
		zap.Bool("auth_enabled", authProvider != nil),
	)
	return server
}

// setupRoutes attaches all routes, wrapping the API behind auth when a
// provider is configured.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)

	apiMux := http.NewServeMux()
	s.api.RegisterRoutes(apiMux)

	var apiHandler http.Handler = apiMux
	if s.authProv != nil {
		apiHandler = s.authProv.Middleware(apiMux)
		s.mux.HandleFunc("/api/login", s.authProv.LoginHandler())
		s.mux.HandleFunc("/api/logout", s.authProv.LogoutHandler())
	}
	s.mux.Handle("/api/", apiHandler)
}

func (s *Server) rootHandler() http.Handler {
	return s.loggingMw.Handler(s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Start begins listening. It blocks until the server shuts down. The
// session janitor runs until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	go s.sessions.StartJanitor(ctx, s.config.SweepInterval)

	s.logger.Info("web server starting", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}
	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Sessions exposes the session store, mainly for tests.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}
