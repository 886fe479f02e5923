package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackzampolin/draftly/internal/api"
	"github.com/jackzampolin/draftly/internal/config"
	"github.com/jackzampolin/draftly/internal/draft"
	"github.com/jackzampolin/draftly/internal/home"
	"github.com/jackzampolin/draftly/internal/prompts"
	draftprompt "github.com/jackzampolin/draftly/internal/prompts/draft"
	"github.com/jackzampolin/draftly/internal/prompts/grade"
	"github.com/jackzampolin/draftly/internal/providers"
	"github.com/jackzampolin/draftly/internal/review"
	"github.com/jackzampolin/draftly/internal/review/grading"
	"github.com/jackzampolin/draftly/internal/server/endpoints"
	"github.com/jackzampolin/draftly/internal/svcctx"
)

// Server is the main Draftly HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	registry   *providers.Registry
	prompts    *prompts.Resolver
	configMgr  *config.Manager
	home       *home.Dir
	llmClient  providers.LLMClient
	logger     *slog.Logger

	// services holds all core services for context enrichment. It is
	// rebuilt whenever the configuration changes.
	services atomic.Pointer[svcctx.Services]

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: server.host from config)
	Host string
	// Port is the port to listen on (default: server.port from config)
	Port string
	// ConfigManager provides configuration with hot-reload support.
	// Defaults are used when nil.
	ConfigManager *config.Manager
	// Home is the draftly home directory (optional).
	Home *home.Dir
	// LLMClient, when set, grades clauses instead of the registry's default client.
	LLMClient providers.LLMClient
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	current := config.DefaultConfig()
	if cfg.ConfigManager != nil {
		current = cfg.ConfigManager.Get()
	}
	if cfg.Host == "" {
		cfg.Host = current.Server.Host
	}
	if cfg.Port == "" {
		cfg.Port = current.Server.Port
	}

	// Create provider registry
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)
	registry.Reload(current.ToProviderRegistryConfig())

	resolver := prompts.NewResolver(cfg.Logger)
	grade.RegisterPrompts(resolver)
	draftprompt.RegisterPrompts(resolver)

	s := &Server{
		registry:  registry,
		prompts:   resolver,
		configMgr: cfg.ConfigManager,
		home:      cfg.Home,
		llmClient: cfg.LLMClient,
		logger:    cfg.Logger,
	}

	if _, err := resolver.LoadOverrides(s.promptDir(current)); err != nil {
		return nil, fmt.Errorf("failed to load prompt overrides: %w", err)
	}
	if err := s.rebuild(current); err != nil {
		return nil, err
	}

	// Watch for config changes
	if cfg.ConfigManager != nil {
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
			if _, err := resolver.LoadOverrides(s.promptDir(c)); err != nil {
				s.logger.Warn("prompt override reload failed", "error", err)
			}
			if err := s.rebuild(c); err != nil {
				s.logger.Error("service rebuild failed, keeping previous services", "error", err)
				return
			}
			s.logger.Info("services reloaded from config")
		})
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireGrader)
	s.handler = cors(s.withServices(mux))

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Reviews wait on one LLM call per clause
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// promptDir is the configured override directory, else <home>/prompts.
func (s *Server) promptDir(c *config.Config) string {
	if c.Prompts.OverrideDir != "" {
		return c.Prompts.OverrideDir
	}
	if s.home != nil {
		return s.home.PromptsPath()
	}
	return ""
}

// rebuild constructs the request services from c and swaps them in.
func (s *Server) rebuild(c *config.Config) error {
	svc := &svcctx.Services{
		Registry: s.registry,
		Drafter:  draft.NewDrafter(nil, s.prompts, s.logger),
		Prompts:  s.prompts,
		Logger:   s.logger,
		Home:     s.home,
		Env:      c.Server.Env,
		Limits: svcctx.Limits{
			MaxJSONBytes:   c.Server.MaxJSONBytes,
			MaxUploadBytes: c.Server.MaxUploadBytes,
		},
	}

	client := s.llmClient
	if client == nil {
		if def, err := s.registry.DefaultLLM(); err == nil {
			client = def
		}
	}
	if client == nil {
		s.logger.Warn("no LLM provider configured, reviews are disabled")
		s.services.Store(svc)
		return nil
	}

	gc := c.GraderConfig()
	gc.Client = client
	gc.Prompts = s.prompts
	gc.Logger = s.logger
	grader, err := grading.NewGrader(gc)
	if err != nil {
		return fmt.Errorf("failed to create grader: %w", err)
	}
	reviewer, err := review.NewReviewer(review.Config{
		Grader:     grader,
		Sectioning: c.SectioningOptions(),
		Candidates: c.CandidateOptions(),
		Risk:       c.Review.Risk,
		MaxWorkers: c.Defaults.MaxWorkers,
		Logger:     s.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create reviewer: %w", err)
	}
	svc.Reviewer = reviewer
	s.services.Store(svc)
	s.logger.Info("grading provider ready", "client", grader.ClientName())
	return nil
}

// Start starts the server.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if s.configMgr != nil {
		s.configMgr.WatchConfig()
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the root HTTP handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Services returns the current service set.
func (s *Server) Services() *svcctx.Services {
	return s.services.Load()
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc := s.services.Load(); svc != nil {
			ctx = svcctx.WithServices(ctx, svc)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireGrader is middleware that ensures a grading provider is configured.
// Returns 503 Service Unavailable otherwise.
func (s *Server) requireGrader(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc := s.services.Load(); svc == nil || svc.Reviewer == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"no LLM provider configured"}`))
			return
		}
		next(w, r)
	}
}

// cors allows browser clients on any origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Expose-Headers", "Content-Disposition")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
