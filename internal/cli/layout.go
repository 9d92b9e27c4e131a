package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/extgraph/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		filters filterFlags
		output  string
		noCache bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the column layout of an extension graph",
		Long: `Compute the column layout of an extension graph.

Nodes are placed in columns by kind: providers on the left, the mode's
middle columns (extensions, extension points or exposed components) and
consumers on the right. The viewport is widened when the columns do not
fit. The output is a layout.json file (same format as 'render -f json')
that 'visualize' can turn into SVG or DOT.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, sel, err := filters.resolve(c.Config.Mode)
			if err != nil {
				return err
			}
			opts.Mode = mode
			opts.Selection = sel
			opts.Formats = []string{pipeline.FormatJSON}
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <snapshot>.<view>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "viewport width (default from config)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "viewport height (default from config)")

	return cmd
}

// runLayout computes the layout and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.loadRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	c.applyDefaults(&opts)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Mode))
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	path := output
	if path == "" {
		path = outputBase("", c.Config.Snapshot, res.Graph.Mode) + formatExt[pipeline.FormatJSON]
	}
	if err := writeOutput(path, res.Artifacts[pipeline.FormatJSON]); err != nil {
		return err
	}
	if path == stdoutPath {
		return nil
	}

	printSuccess("Layout complete")
	printFile(path)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.LayoutHit)
	printKeyValue("viewport", fmt.Sprintf("%.0f × %.0f", res.Layout.Width, res.Layout.Height))
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s visualize %s --graph <graph.json>", appName, path))

	return nil
}

// applyDefaults fills viewport and layout settings from the config.
func (c *CLI) applyDefaults(opts *pipeline.Options) {
	if opts.Width <= 0 {
		opts.Width = c.Config.Width
	}
	if opts.Height <= 0 {
		opts.Height = c.Config.Height
	}
	opts.Layout = c.Config.Layout
	opts.Logger = c.Logger
}
