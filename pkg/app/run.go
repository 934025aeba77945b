// Package app provides the shared entry point wiring configuration,
// telemetry, the buffer manager, the sweep scheduler, and the HTTP gateway.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/obitus-ai/contextd/internal/buffer"
	"github.com/obitus-ai/contextd/internal/config"
	"github.com/obitus-ai/contextd/internal/cron"
	"github.com/obitus-ai/contextd/internal/gateway"
	"github.com/obitus-ai/contextd/internal/manager"
	"github.com/obitus-ai/contextd/internal/mcpserver"
	"github.com/obitus-ai/contextd/internal/metrics"
	"github.com/obitus-ai/contextd/internal/telemetry"
	"github.com/obitus-ai/contextd/internal/token"
	sqliteloader "github.com/obitus-ai/contextd/modules/loader/sqlite"
	openaisum "github.com/obitus-ai/contextd/modules/summarizer/openai"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version is injected at build time via ldflags.
	Version string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level
}

// Run loads configuration, starts all components, and blocks until a
// shutdown signal is received.
func Run(params RunParams) error {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: params.LogLevel,
	}))

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()

	m := metrics.New()

	var summarizer buffer.Summarizer
	if cfg.Summarizer != nil {
		s, err := openaisum.New(openaisum.Config{
			BaseURL:   cfg.Summarizer.BaseURL,
			APIKey:    cfg.Summarizer.APIKey,
			APIKeyEnv: cfg.Summarizer.APIKeyEnv,
			Model:     cfg.Summarizer.Model,
			MaxTokens: cfg.Summarizer.MaxTokens,
			Timeout:   config.Duration(cfg.Summarizer.Timeout, 30*time.Second),
		})
		if err != nil {
			return err
		}
		summarizer = s
	} else {
		logger.Warn("app: no summarizer configured, buffers will degrade to placeholder digests")
	}

	var loader buffer.Loader
	if cfg.Store != nil {
		store, err := sqliteloader.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		loader = store
		logger.Info("app: persisted-message store opened", "path", cfg.Store.Path)
	}

	mgr := manager.New(manager.Config{
		MaxTokens:        cfg.Buffer.MaxTokens,
		CleanupInterval:  config.Duration(cfg.Sweep.Interval, manager.DefaultCleanupInterval),
		IdleTTL:          config.Duration(cfg.Sweep.IdleTTL, manager.DefaultIdleTTL),
		SummarizeTimeout: config.Duration(cfg.Buffer.SummarizeTimeout, buffer.DefaultSummarizeTimeout),
	}, token.NewAdapter(nil), summarizer, logger, m)
	m.RegisterActiveBuffers(mgr.Len)

	scheduler := cron.NewScheduler(logger)
	if err := scheduler.RegisterJob(&cron.BufferCleanupJob{
		Sweeper:      mgr,
		Logger:       logger,
		ScheduleExpr: "@every " + config.Duration(cfg.Sweep.Interval, manager.DefaultCleanupInterval).String(),
	}); err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer func() { _ = scheduler.Stop(context.Background()) }()

	var mcpHandler http.Handler
	if cfg.Gateway.EnableMCP {
		mcpHandler = mcpserver.New(mgr, "/mcp", logger).Handler()
	}

	gw := gateway.New(gateway.Config{
		Listen:        cfg.Gateway.Listen,
		BearerToken:   cfg.Gateway.BearerToken,
		StatsInterval: config.Duration(cfg.Gateway.StatsInterval, 5*time.Second),
	}, mgr, loader, m, mcpHandler, logger)
	if err := gw.Start(); err != nil {
		return err
	}

	logger.Info("contextd started",
		"version", params.Version,
		"listen", cfg.Gateway.Listen,
		"max_tokens", cfg.Buffer.MaxTokens,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return gw.Stop(stopCtx)
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/contextd/contextd.yaml → ./contextd.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "contextd", "contextd.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "contextd", "contextd.yaml"))
	}

	candidates = append(candidates, "contextd.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
