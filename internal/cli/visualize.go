package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		graphPath  string
		output     string
		opts       pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a computed layout",
		Long: `Render a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
the graph.json it was computed from (produced by 'graph') and renders them
to SVG or DOT. No snapshot is read.

Use 'render' as a shortcut to go directly from a snapshot to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], graphPath, output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <layout> without .layout.json)")
	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "graph.json the layout was computed from (required)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add kind and owning plugin to node labels")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

// runVisualize loads the layout and graph and renders them.
func (c *CLI) runVisualize(ctx context.Context, input, graphPath, output string, opts pipeline.Options) error {
	layoutData, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	data, err := graph.ReadGraphFile(graphPath)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", graphPath, err)
	}
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", data.Mode))
	spinner.Start()

	artifacts, err := pipeline.RenderFromLayoutData(ctx, layoutData, data, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	base := output
	if base == "" {
		base = strings.TrimSuffix(strings.TrimSuffix(input, formatExt[pipeline.FormatJSON]), ".json")
	}
	paths, err := writeArtifacts(artifacts, opts.Formats, outputBase(base, "", data.Mode))
	if err != nil {
		return err
	}

	printSuccess("Visualization complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(data.Nodes), len(data.Dependencies), false)
	return nil
}
