package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-reqdoc/pkg/cache"
	"github.com/goliatone/go-reqdoc/pkg/config"
	"github.com/goliatone/go-reqdoc/pkg/loader"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web"
	"github.com/goliatone/go-reqdoc/pkg/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project with live editing",
		Long: `Serve renders the project on demand. Edits made in the browser are kept in
memory and, with --persist, written back to the document files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from config, 127.0.0.1:8001)")
	cmd.Flags().Bool("watch", false, "reload the project when its files change")
	cmd.Flags().Bool("persist", false, "write edits back to the document files")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	l := a.loader()

	project, err := l.Load(ctx)
	if err != nil {
		return err
	}
	// The baseline is a second copy so edits show up on the diff screens.
	baseline, err := l.Load(ctx)
	if err != nil {
		return err
	}

	storeOpts := []server.StoreOption{server.WithReloader(l), server.WithBaseline(baseline)}
	if cfg.Project.Persist {
		storeOpts = append(storeOpts, server.WithPersister(l))
	}
	store, err := server.NewStore(project, storeOpts...)
	if err != nil {
		return err
	}

	pages, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer pages.Close()

	srv, err := a.newServer(store, pages)
	if err != nil {
		return err
	}

	if cfg.Project.Watch {
		watcher, err := loader.NewWatcher(l.Root(), func(paths []string) {
			a.logger.Debug("project files changed", "paths", paths)
			if err := srv.Reload(ctx); err != nil {
				a.logger.Warn("reload project", "error", err)
			}
		}, loader.WithWatchLogger(a.logger))
		if err != nil {
			return fmt.Errorf("watch %s: %w", l.Root(), err)
		}
		go watcher.Run(ctx)
		defer watcher.Stop()
	}

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	a.logger.Info("serving project",
		"addr", cfg.Server.Addr,
		"project", l.Root(),
		"documents", len(project.Documents),
		"cache", cfg.Cache.Backend,
	)
	return runHTTP(ctx, httpSrv, cfg.Server.ShutdownTimeout, a.logger)
}

func (a *app) newServer(store *server.Store, pages cache.Cache) (*server.Server, error) {
	cfg := a.cfg
	var webOpts []web.Option
	if cfg.Render.TemplatesDir != "" {
		webOpts = append(webOpts, web.WithTemplatesDir(cfg.Render.TemplatesDir))
	}
	html, err := web.New(webOpts...)
	if err != nil {
		return nil, err
	}
	renderOpts, err := cfg.RenderOptions()
	if err != nil {
		return nil, err
	}

	opts := []server.Option{
		server.WithLogger(a.logger),
		server.WithCache(pages),
		server.WithWebRenderer(html),
		server.WithRenderOptions(renderOpts),
		server.WithViewOptions(cfg.ViewOptions(version)...),
		server.WithLinkBase(cfg.Server.LinkBase),
		server.WithStaticPrefix(cfg.Server.StaticPrefix),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, server.WithMetrics(server.NewMetrics(), cfg.Metrics.Path))
	}
	return server.New(store, opts...)
}

// newCache builds the configured page cache. A redis backend must answer a
// ping before the server starts.
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return cache.Nop{}, nil
	case config.CacheMemory:
		return cache.NewMemory(
			cache.WithMemoryTTL(cfg.TTL),
			cache.WithMaxEntries(cfg.MaxEntries),
		), nil
	case config.CacheRedis:
		r := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			cache.WithTTL(cfg.TTL),
			cache.WithPrefix(cfg.Prefix),
		)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := r.Ping(pingCtx); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("cache: redis %s: %w", cfg.RedisAddr, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}

// runHTTP serves until ctx is done, then gives in-flight requests the
// shutdown timeout to finish.
func runHTTP(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "error", err)
		if err := srv.Close(); err != nil {
			return fmt.Errorf("close server: %w", err)
		}
	}
	logger.Info("server stopped")
	return nil
}
