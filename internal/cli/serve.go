package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/extgraph/internal/server"
	"github.com/matzehuels/extgraph/pkg/buildinfo"
	"github.com/matzehuels/extgraph/pkg/observability"
	"github.com/matzehuels/extgraph/pkg/plugin"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		watch   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve graphs and layouts over HTTP",
		Long: `Serve graphs and layouts over HTTP.

The API takes the same view and filter query parameters as the web UI:

  GET    /healthz
  GET    /api/v1/graph?view=&contentProviders=&...
  GET    /api/v1/layout?...&width=&height=
  GET    /api/v1/render?...&format=svg|dot
  GET    /api/v1/candidates?view=
  GET    /api/v1/cache
  DELETE /api/v1/cache
  POST   /api/v1/snapshot/reload

With --watch the snapshot file is reloaded whenever it changes. Snapshot
URLs are not watched; use the reload endpoint instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				c.Config.Server.Watch = watch
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the snapshot when the file changes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the byte cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	if _, err := c.snapshotPath(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// A served snapshot URL is always fetched fresh so reloads see changes.
	runner.Fetcher = c.fetcher(nil)
	if err := c.loadSnapshot(ctx, runner); err != nil {
		return err
	}

	observability.InstallTracing()
	if c.Config.Tracing.Enabled() {
		shutdown, err := observability.InitExport(ctx, c.Config.Tracing, buildinfo.Get().Version)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				c.Logger.Warn("flush traces", "error", err)
			}
		}()
		printDetail("Exporting traces to %s", c.Config.Tracing.Endpoint)
	}

	cfg := c.Config.Server
	srv := server.New(server.Config{
		Addr:            cfg.Addr,
		Runner:          runner,
		Logger:          c.Logger,
		Width:           c.Config.Width,
		Height:          c.Config.Height,
		Layout:          c.Config.Layout,
		SnapshotPath:    c.Config.Snapshot,
		Watch:           cfg.Watch,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})

	printSuccess("Serving %s", StyleHighlight.Render(cfg.Addr))
	printDetail("Cache: %s", c.Config.Cache.Backend)
	if cfg.Watch && !plugin.IsURL(c.Config.Snapshot) {
		printDetail("Watching %s", c.Config.Snapshot)
	}
	return srv.Run(ctx)
}
