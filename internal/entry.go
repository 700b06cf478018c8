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

	"github.com/starford/mdlive/internal/api"
	"github.com/starford/mdlive/internal/blob"
	"github.com/starford/mdlive/internal/editor"
	"github.com/starford/mdlive/internal/inbox"
	"github.com/starford/mdlive/internal/mcpserver"
	"github.com/starford/mdlive/internal/preview"
	"github.com/starford/mdlive/internal/session"
	"github.com/starford/mdlive/internal/sse"
	"github.com/starford/mdlive/internal/web"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// stdout belongs to the MCP transport in stdio mode.
	logOutput := app.logOutput
	if logOutput == nil {
		logOutput = io.Writer(os.Stdout)
		if cfg.MCP.Mode == MCPModeStdio {
			logOutput = os.Stderr
		}
	}
	logger := newLogger(cfg.App, logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("log_level", cfg.App.LogLevel.String()),
		slog.Duration("debounce", cfg.Editor.Debounce),
		slog.String("inbox", cfg.Inbox.Path),
		slog.String("mcp_mode", cfg.MCP.Mode),
		slog.String("auth_mode", cfg.Auth.Mode))

	broker := sse.NewBroker(cfg.SSE.StatsInterval, sse.WithHeartbeat(cfg.SSE.Heartbeat))
	defer broker.Close()

	sess := newSession(cfg, broker, logger)
	defer sess.Close()

	var mcpSrv *mcpserver.Server
	if cfg.MCP.Mode != MCPModeDisabled {
		mcpSrv = mcpserver.New(sess, app.version)
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRouter(cfg, sess, broker, mcpSrv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Revoke dropped images the document no longer references.
	g.Go(func() error {
		return sess.Janitor(gCtx, cfg.Blobs.SweepInterval)
	})

	if cfg.Inbox.Enabled() {
		g.Go(func() error {
			return inbox.Watch(gCtx, cfg.Inbox.Path, logger, func(f editor.File) {
				res := sess.DropAtCursor([]editor.File{f})
				logger.Info("inbox: image inserted",
					slog.String("name", f.Name),
					slog.Uint64("revision", res.Document.Revision))
			},
				inbox.WithSettle(cfg.Inbox.Settle),
				inbox.WithMaxBytes(cfg.Blobs.MaxBytes))
		})
	}

	if cfg.MCP.Mode == MCPModeStdio {
		g.Go(func() error {
			logger.Info("Starting MCP stdio server")
			if err := mcpSrv.ServeStdio(); err != nil {
				return fmt.Errorf("MCP stdio error: %w", err)
			}
			// The client closed stdin; stop with it.
			cancel()
			return nil
		})
	}

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
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
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

func newRenderer(cfg *Config) *preview.Renderer {
	opts := []preview.Option{
		preview.WithLocatorURL(blob.URL),
		preview.WithHighlight(cfg.Editor.HighlightStyle),
		preview.WithHardWraps(cfg.Editor.HardWraps),
		preview.WithFrontmatter(cfg.Editor.Frontmatter),
	}
	if cfg.Editor.Placeholder != "" {
		opts = append(opts, preview.WithPlaceholder(cfg.Editor.Placeholder))
	}
	return preview.New(opts...)
}

func newSession(cfg *Config, pub session.Publisher, logger *slog.Logger) *session.Session {
	store := blob.NewStore(
		blob.WithMaxBytes(cfg.Blobs.MaxBytes),
		blob.WithGrace(cfg.Blobs.Grace),
	)
	return session.New(
		session.WithRenderer(newRenderer(cfg)),
		session.WithBlobStore(store),
		session.WithPublisher(pub),
		session.WithDebounce(cfg.Editor.Debounce),
		session.WithLogger(logger),
	)
}

// newRouter assembles every HTTP route. mcpSrv may be nil.
func newRouter(cfg *Config, sess *session.Session, broker *sse.Broker, mcpSrv *mcpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(sess, api.RouterConfig{
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
		AllowedOrigins: cfg.App.HTTP.AllowedOrigins,
		MaxDropBytes:   cfg.Blobs.MaxRequestBytes,
		Events:         broker,
	}))

	// Blob locators are unguessable and img elements cannot send headers,
	// so images are served without auth.
	r.Get(blob.URLPath+"{id}", api.NewBlobHandler(sess.Blobs()).ServeBlob)

	if mcpSrv != nil && cfg.MCP.Mode == MCPModeHTTP {
		r.With(api.AuthMiddleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token)).Handle("/mcp", mcpSrv.HTTPHandler())
	}

	r.Handle("/*", web.Handler())
	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
