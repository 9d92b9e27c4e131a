package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		filters filterFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the extension graph for one visualization mode",
		Long: `Build the extension graph for one visualization mode.

The graph command reads the plugin snapshot, applies the view and filters
and writes the resulting nodes, dependencies and catalogs as graph.json.
The filters take plugin and extension point ids; unknown ids are kept in
the selection but match nothing.

Results are cached locally for faster subsequent runs.`,
		Example: `  extgraph graph -s plugins.json --view extensionpoint
  extgraph graph -s plugins.json --providers grafana-k8s-app -o - | jq .nodes
  extgraph graph -s plugins.json --query 'view=addedfunctions&contentConsumers=grafana'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, sel, err := filters.resolve(c.Config.Mode)
			if err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), mode, sel, output, noCache)
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <snapshot>.<view>.graph.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, mode graph.Mode, sel filter.Selection, output string, noCache bool) error {
	runner, err := c.loadRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	data, canonical, info, err := runner.GraphWithCacheInfo(ctx, mode, sel)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	encoded, err := graph.MarshalGraph(data)
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = outputBase("", c.Config.Snapshot, mode) + formatExt["graph"]
	}
	if err := writeOutput(path, encoded); err != nil {
		return err
	}
	if path == stdoutPath {
		return nil
	}

	printSuccess("Graph complete")
	printFile(path)
	printStats(len(data.Nodes), len(data.Dependencies), info.ResultHit || info.GraphHit)
	if data.IsEmpty() {
		printWarning("No data available for %s with the current filters", mode)
	}
	printNewline()
	printNextStep("Layout", fmt.Sprintf("%s layout -s %s --query '%s'", appName, c.Config.Snapshot, canonical.Encode(mode).Encode()))
	return nil
}

// writeOutput writes data to path, or to stdout for "-".
func writeOutput(path string, data []byte) error {
	if path == stdoutPath {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
