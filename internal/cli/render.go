package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/extgraph/pkg/pipeline"
)

// renderCommand creates the render command, a shortcut from snapshot to
// rendered output.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		filters    filterFlags
		formatsStr string
		output     string
		noCache    bool
		opts       pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an extension graph to SVG, DOT or JSON",
		Long: `Render an extension graph to SVG, DOT or JSON.

The render command runs the full pipeline: it builds the graph for the
requested view, computes the layout and renders every requested format.
One file is written per format:

  svg    Graphviz node-link diagram
  dot    Graphviz source
  json   layout.json (node positions)
  graph  graph.json (nodes, dependencies and catalogs)

Results are cached locally for faster subsequent runs.`,
		Example: `  extgraph render -s plugins.json --view exposedComponents
  extgraph render -s plugins.json -f svg,dot,json -o out/links --detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, sel, err := filters.resolve(c.Config.Mode)
			if err != nil {
				return err
			}
			opts.Mode = mode
			opts.Selection = sel
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if output == stdoutPath && len(opts.Formats) > 1 {
				return fmt.Errorf("cannot write %d formats to stdout", len(opts.Formats))
			}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path, - for stdout with a single format (default: <snapshot>.<view>)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, graph (comma-separated)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add kind and owning plugin to node labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "viewport width (default from config)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "viewport height (default from config)")

	return cmd
}

// runRender executes the complete pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.loadRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	c.applyDefaults(&opts)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Mode))
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if output == stdoutPath {
		return writeOutput(stdoutPath, res.Artifacts[opts.Formats[0]])
	}

	paths, err := writeArtifacts(res.Artifacts, opts.Formats, outputBase(output, c.Config.Snapshot, res.Graph.Mode))
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.ResultHit || res.CacheInfo.LayoutHit)
	if res.Layout.Badges != nil {
		printKeyValue("badges", badgeList(*res.Layout.Badges))
	}
	return nil
}

// writeArtifacts writes one file per format and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return paths, fmt.Errorf("format %s was not rendered", f)
		}
		path := base + formatExt[f]
		if err := writeOutput(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
