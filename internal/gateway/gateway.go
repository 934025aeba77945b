// Package gateway exposes the buffer manager's operations over HTTP:
// health, stats, per-conversation operations, Prometheus metrics, a live
// stats WebSocket stream, and the optional MCP tool surface.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/obitus-ai/contextd/internal/buffer"
	"github.com/obitus-ai/contextd/internal/manager"
	"github.com/obitus-ai/contextd/internal/metrics"
)

// Config holds the HTTP server settings.
type Config struct {
	// Listen is the bind address, e.g. ":8420".
	Listen string

	// BearerToken protects the admin endpoints; empty leaves them unmounted.
	BearerToken string

	// StatsInterval is the push period for the WebSocket stats stream.
	StatsInterval time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8420"
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = 5 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Gateway is the admin HTTP server in front of a buffer manager.
type Gateway struct {
	config  Config
	manager *manager.Manager
	loader  buffer.Loader // nil when no persistence store is configured
	metrics *metrics.Metrics
	mcp     http.Handler // nil when the MCP surface is disabled
	logger  *slog.Logger
	server  *http.Server
}

// New creates a Gateway. loader and mcp may be nil.
func New(cfg Config, mgr *manager.Manager, loader buffer.Loader, m *metrics.Metrics, mcp http.Handler, logger *slog.Logger) *Gateway {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		config:  cfg,
		manager: mgr,
		loader:  loader,
		metrics: m,
		mcp:     mcp,
		logger:  logger,
	}
}

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/health", g.handleHealth())
	if g.metrics != nil {
		r.Handle("/metrics", g.metrics.Handler())
	}

	// Admin endpoints — not mounted if no bearer token configured.
	if g.config.BearerToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.BearerToken))
			r.Get("/stats", g.handleStats())
			r.Get("/ws/stats", g.handleStatsStream())

			r.Route("/conversations/{id}", func(r chi.Router) {
				r.Get("/", g.handleBufferInfo())
				r.Delete("/", g.handleClear())
				r.Get("/context", g.handleContext())
				r.Post("/messages", g.handleAddMessage())
				r.Post("/summarize", g.handleForceSummarize())
				r.Post("/resume", g.handleResume())
				r.Get("/export", g.handleExport())
				r.Put("/import", g.handleImport())
			})

			if g.mcp != nil {
				r.Mount("/mcp", g.mcp)
			}
		})
	}

	return r
}

// Start begins serving. It returns once the listener is bound; serving
// continues in the background until Stop.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:         g.config.Listen,
		Handler:      g.buildRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Listen)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Listen)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()
	return g.server.Shutdown(shutdownCtx)
}
