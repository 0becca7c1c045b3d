// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/rounded/internal/api"
	"github.com/starford/rounded/internal/catalogservice"
	"github.com/starford/rounded/internal/fetch"
	"github.com/starford/rounded/internal/index"
	"github.com/starford/rounded/internal/mcpserver"
	"github.com/starford/rounded/internal/sources"
	"github.com/starford/rounded/internal/sse"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{output: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// sourceList returns the manifest URLs to load: the override when given,
// otherwise the configured list plus the sources file.
func (a *application) sourceList() ([]string, error) {
	if len(a.sources) > 0 {
		return slices.Clone(a.sources), nil
	}
	return a.config.Catalog.ResolveSources()
}

func (a *application) fetcher() *fetch.Client {
	c := a.config.Catalog
	return fetch.New(
		fetch.WithTimeout(c.FetchTimeout),
		fetch.WithMaxBytes(c.MaxManifestBytes),
		fetch.WithUserAgent(c.UserAgent),
	)
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	urls, err := app.sourceList()
	if err != nil {
		return fmt.Errorf("resolve sources: %w", err)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.Int("sources", len(urls)),
		slog.String("sources_file", cfg.Catalog.SourcesFile),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := catalogservice.New(app.fetcher(), urls,
		catalogservice.WithIndex(db),
		catalogservice.WithNotifier(broker),
		catalogservice.WithLogger(logger),
		catalogservice.WithConcurrency(cfg.Catalog.Concurrency),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health probes are unauthenticated.
	r.Mount("/health", api.NewHealthRouter(svc))
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Initial catalog load.
	g.Go(func() error {
		if _, err := svc.Refresh(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("initial load failed", slog.String("error", err.Error()))
		}
		return nil
	})

	if cfg.Catalog.WatchSources && len(app.sources) == 0 {
		static := slices.Clone(cfg.Catalog.Sources)
		g.Go(func() error {
			return sources.Watch(gCtx, cfg.Catalog.SourcesFile, logger, func(fileURLs []string) {
				go func() {
					if err := svc.SetSources(gCtx, append(slices.Clone(static), fileURLs...)); err != nil && !errors.Is(err, context.Canceled) {
						logger.Warn("reload after sources change failed", slog.String("error", err.Error()))
					}
				}()
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup context once the server has stopped, so
// the loader and watcher goroutines return too.
var errShutdown = errors.New("shutdown")

// RunMCP serves the catalog over MCP on stdin/stdout. Logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	urls, err := app.sourceList()
	if err != nil {
		return fmt.Errorf("resolve sources: %w", err)
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	svc := catalogservice.New(app.fetcher(), urls,
		catalogservice.WithIndex(db),
		catalogservice.WithLogger(logger),
		catalogservice.WithConcurrency(cfg.Catalog.Concurrency),
	)
	if _, err := svc.StartRefresh(ctx); err != nil {
		return fmt.Errorf("start load: %w", err)
	}

	logger.Info("MCP server starting", slog.Int("sources", len(urls)))
	return mcpserver.New(svc, Version).ServeStdio()
}

// Fetch loads every configured manifest once and prints the catalog.
func Fetch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	urls, err := app.sourceList()
	if err != nil {
		return fmt.Errorf("resolve sources: %w", err)
	}

	svc := catalogservice.New(app.fetcher(), urls,
		catalogservice.WithLogger(logger),
		catalogservice.WithConcurrency(cfg.Catalog.Concurrency),
	)
	cat, err := svc.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	if app.asJSON {
		enc := json.NewEncoder(app.output)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.Snapshot())
	}
	return printCatalog(app.output, svc)
}

func printCatalog(w io.Writer, svc *catalogservice.Service) error {
	ctx := context.Background()
	for _, repo := range svc.ListRepositories(ctx) {
		if repo.Failed {
			if _, err := fmt.Fprintf(w, "[%d] FAILED %s\n    %s\n", repo.Index, repo.URL, failureMessage(svc, repo.Index)); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "[%d] %s (%s) %d packages, %d featured\n",
			repo.Index, repo.Name, repo.URL, repo.Packages, repo.Featured); err != nil {
			return err
		}
		detail, err := svc.GetRepository(ctx, repo.Index)
		if err != nil {
			return err
		}
		for _, p := range detail.Packages {
			if _, err := fmt.Fprintf(w, "    %-40s %s %s\n", p.Identifier, p.Name, p.Version); err != nil {
				return err
			}
		}
	}
	return nil
}

func failureMessage(svc *catalogservice.Service, index int) string {
	for _, f := range svc.Failures(context.Background()) {
		if f.Index == index {
			return f.Message
		}
	}
	return ""
}
