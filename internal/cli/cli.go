// Package cli implements the extgraph command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/extgraph/pkg/buildinfo"
	"github.com/matzehuels/extgraph/pkg/cache"
	"github.com/matzehuels/extgraph/pkg/config"
	"github.com/matzehuels/extgraph/pkg/errors"
	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/httputil"
	"github.com/matzehuels/extgraph/pkg/pipeline"
	"github.com/matzehuels/extgraph/pkg/plugin"
)

// =============================================================================
// Constants
// =============================================================================

const appName = config.AppName

// stdoutPath writes an output to stdout instead of a file.
const stdoutPath = "-"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config config.Config

	configPath string
	snapshot   string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "extgraph visualizes how plugins extend each other",
		Long: `extgraph turns a snapshot of plugin metadata into dependency graphs of
extension points, added links, components and functions, and exposed
components, ready for layout and rendering.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/extgraph/config.toml)")
	root.PersistentFlags().StringVarP(&c.snapshot, "snapshot", "s", "", "plugin snapshot file (.json, .yaml) or http(s) URL")

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.candidatesCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.snapshot != "" {
		cfg.Snapshot = c.snapshot
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache. The
// snapshot is not loaded. Snapshots fetched from a URL are kept in the same
// cache for the configured TTL.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	var store cache.Cache = cache.NewNullCache()
	if !noCache {
		var err error
		if store, err = c.Config.Cache.Open(ctx); err != nil {
			return nil, err
		}
	}
	r := pipeline.NewRunner(store, c.Config.Cache.Keyer(), c.Logger)
	r.TTL = c.Config.Cache.TTL
	r.Fetcher = c.fetcher(store)
	return r, nil
}

// fetcher returns the client used for snapshot URLs.
func (c *CLI) fetcher(store cache.Cache) *httputil.Client {
	client := httputil.NewClient(store, c.Config.Cache.TTL)
	if c.Config.Token != "" {
		client.Header.Set("Authorization", "Bearer "+c.Config.Token)
	}
	return client
}

// loadRunner creates a runner and loads the configured snapshot into it.
func (c *CLI) loadRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	r, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	if err := c.loadSnapshot(ctx, r); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (c *CLI) loadSnapshot(ctx context.Context, r *pipeline.Runner) error {
	path, err := c.snapshotPath()
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	if err := r.LoadSnapshot(ctx, path); err != nil {
		return err
	}
	snap, _ := r.Snapshot()
	prog.done(fmt.Sprintf("Loaded %d plugins from %s", len(snap), path))
	return nil
}

func (c *CLI) snapshotPath() (string, error) {
	if c.Config.Snapshot == "" {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"no snapshot given: pass --snapshot or set %s", config.EnvSnapshot)
	}
	return c.Config.Snapshot, nil
}

// =============================================================================
// Filter Flags
// =============================================================================

// filterFlags binds the mode and selection flags shared by the graph
// commands. They mirror the URL state of the web UI.
type filterFlags struct {
	view            string
	query           string
	providers       []string
	consumers       []string
	extensionPoints []string
	epConsumers     []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.view, "view", "", "visualization mode: "+modeNames())
	fl.StringVar(&f.query, "query", "", "UI URL or query string to take the view and filters from")
	fl.StringSliceVar(&f.providers, "providers", nil, "content providers to show (comma-separated)")
	fl.StringSliceVar(&f.consumers, "consumers", nil, "content consumers to show (comma-separated)")
	fl.StringSliceVar(&f.extensionPoints, "extension-points", nil, "extension points to show (comma-separated)")
	fl.StringSliceVar(&f.epConsumers, "ep-consumers", nil, "extension point consumers to show (comma-separated)")
	_ = cmd.RegisterFlagCompletionFunc("view", completeModes)
}

// resolve returns the requested mode and selection. Explicit flags win over
// --query, which wins over the configured default mode.
func (f *filterFlags) resolve(def graph.Mode) (graph.Mode, filter.Selection, error) {
	mode := def
	var sel filter.Selection

	if f.query != "" {
		q, err := parseQuery(f.query)
		if err != nil {
			return "", filter.Selection{}, err
		}
		if v := q.Get(filter.ParamView); v != "" {
			if mode, err = graph.ParseMode(v); err != nil {
				return "", filter.Selection{}, err
			}
		}
		_, sel = filter.ParseQuery(q)
	}

	if f.view != "" {
		m, err := graph.ParseMode(f.view)
		if err != nil {
			return "", filter.Selection{}, err
		}
		mode = m
	}
	override(&sel.ContentProviders, f.providers)
	override(&sel.ContentConsumers, f.consumers)
	override(&sel.ExtensionPoints, f.extensionPoints)
	override(&sel.ContentConsumersForExtensionPoint, f.epConsumers)

	return mode, sel, nil
}

func override(dst *[]string, ids []string) {
	if len(ids) > 0 {
		*dst = ids
	}
}

// parseQuery accepts a full URL, a "?query" or a bare query string.
func parseQuery(s string) (url.Values, error) {
	if u, err := url.Parse(s); err == nil && u.RawQuery != "" {
		return u.Query(), nil
	}
	q, err := url.ParseQuery(strings.TrimPrefix(s, "?"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse query %q", s)
	}
	return q, nil
}

func modeNames() string {
	names := make([]string, len(graph.Modes))
	for i, m := range graph.Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func completeModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, m := range graph.Modes {
		if strings.HasPrefix(string(m), toComplete) {
			out = append(out, string(m))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// formatExt is the file suffix written for each format.
var formatExt = map[string]string{
	pipeline.FormatJSON:  ".layout.json",
	pipeline.FormatGraph: ".graph.json",
	pipeline.FormatDOT:   ".dot",
	pipeline.FormatSVG:   ".svg",
}

// outputBase derives the base output path. Without an explicit output the
// snapshot path and mode are used, e.g. data/plugins.addedlinks. Snapshot
// URLs name the output after their host in the working directory.
func outputBase(output, snapshot string, mode graph.Mode) string {
	if output != "" {
		for _, ext := range formatExt {
			if strings.HasSuffix(output, ext) {
				return strings.TrimSuffix(output, ext)
			}
		}
		return output
	}
	if plugin.IsURL(snapshot) {
		u, _ := url.Parse(snapshot)
		return u.Hostname() + "." + string(mode)
	}
	return strings.TrimSuffix(snapshot, filepath.Ext(snapshot)) + "." + string(mode)
}
