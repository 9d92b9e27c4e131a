package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
)

// maxIDsShown bounds the ids listed per dimension in the table view.
const maxIDsShown = 6

// candidatesCommand creates the candidates command.
func (c *CLI) candidatesCommand() *cobra.Command {
	var (
		view    string
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "List the ids each filter can select in a visualization mode",
		Long: `List the ids each filter can select in a visualization mode.

Candidates are taken from the unfiltered graph of the mode, so they list
exactly the plugins and extension points that can appear in it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := c.Config.Mode
			if view != "" {
				m, err := graph.ParseMode(view)
				if err != nil {
					return err
				}
				mode = m
			}
			return c.runCandidates(cmd.Context(), mode, asJSON, noCache)
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "visualization mode: "+modeNames())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("view", completeModes)

	return cmd
}

func (c *CLI) runCandidates(ctx context.Context, mode graph.Mode, asJSON, noCache bool) error {
	runner, err := c.loadRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	cands, err := runner.Candidates(ctx, mode)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cands)
	}

	fmt.Println(StyleTitle.Render("Candidates") + " " + StyleDim.Render(string(mode)))
	fmt.Println(candidatesTable(cands))
	return nil
}

// candidatesTable renders one row per filter dimension.
func candidatesTable(c filter.Candidates) string {
	rows := [][]string{
		candidateRow("content providers", "--providers", c.ContentProviders),
		candidateRow("content consumers", "--consumers", c.ContentConsumers),
		candidateRow("extension points", "--extension-points", c.ExtensionPoints),
		candidateRow("ep consumers", "--ep-consumers", c.ContentConsumersForExtensionPoint),
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Dimension", "Flag", "Count", "Ids").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return styleCommand
			case col == 2:
				return StyleNumber
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func candidateRow(name, flag string, ids []string) []string {
	shown := ids
	more := ""
	if len(ids) > maxIDsShown {
		shown = ids[:maxIDsShown]
		more = fmt.Sprintf(", … %d more", len(ids)-maxIDsShown)
	}
	list := strings.Join(shown, ", ") + more
	if list == "" {
		list = "—"
	}
	return []string{name, flag, strconv.Itoa(len(ids)), list}
}
