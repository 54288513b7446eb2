// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/vaultlink/internal/api"
	"github.com/starford/vaultlink/internal/graph"
	"github.com/starford/vaultlink/internal/mcpserver"
	"github.com/starford/vaultlink/internal/noteservice"
	"github.com/starford/vaultlink/internal/sse"
	"github.com/starford/vaultlink/internal/storage"
	"github.com/starford/vaultlink/internal/template"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// stdout carries MCP frames in stdio mode, so logs go to stderr.
	var out io.Writer = os.Stdout
	if cfg.App.Transport == TransportStdio {
		out = os.Stderr
	}
	if app.logOutput != nil {
		out = app.logOutput
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("transport", cfg.App.Transport),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("template_dir", cfg.Vault.TemplateDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	templates := template.NewEngine(store, cfg.Vault.TemplateDir)

	if cfg.App.Transport == TransportStdio {
		engine := graph.NewEngine(store, graph.WithLogger(logger))
		notes := noteservice.NewService(store, templates, noteservice.WithLogger(logger))
		logger.Info("Serving MCP over stdio")
		if err := mcpserver.New(engine, notes, logger).ServeStdio(); err != nil {
			return fmt.Errorf("MCP stdio server error: %w", err)
		}
		return nil
	}

	return serveHTTP(ctx, cfg, logger, store, templates)
}

func serveHTTP(ctx context.Context, cfg *Config, logger *slog.Logger, store storage.Provider, templates *template.Engine) error {
	broker := sse.NewBroker(cfg.App.HTTP.EventThrottle, logger)
	defer broker.Close()

	engine := graph.NewEngine(store, graph.WithLogger(logger), graph.WithNotifier(broker))
	notes := noteservice.NewService(store, templates,
		noteservice.WithLogger(logger),
		noteservice.WithNotifier(broker))

	authEnabled := cfg.Auth.AuthEnabled()
	apiRouter := api.NewRouter(engine, notes, authEnabled, cfg.Auth.Token, broker)
	mcpHandler := api.AuthMiddleware(authEnabled, cfg.Auth.Token)(mcpserver.New(engine, notes, logger).HTTPHandler())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := os.Stat(store.Root()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"vault unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)
	r.Handle("/mcp", mcpHandler)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		// Event streams never end on their own.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
