package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tabActiveStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		filters filterFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse modes and toggle filters interactively",
		Long: `Browse modes and toggle filters interactively.

tab/shift+tab switches the visualization mode, ←/→ picks a filter
dimension, space toggles the id under the cursor. On enter the resulting
view is printed as a query usable with --query and the web UI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, sel, err := filters.resolve(c.Config.Mode)
			if err != nil {
				return err
			}
			return c.runExplore(cmd.Context(), mode, sel, noCache)
		},
	}

	filters.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, mode graph.Mode, sel filter.Selection, noCache bool) error {
	runner, err := c.loadRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	final, err := tea.NewProgram(NewExploreModel(ctx, runner, mode, sel), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("explore: %w", err)
	}
	m, ok := final.(ExploreModel)
	if !ok || m.Selected == nil {
		return nil
	}

	query := m.Selected.Selection.Encode(m.Selected.Mode).Encode()
	printSuccess("Selected %s", StyleHighlight.Render(string(m.Selected.Mode)))
	printKeyValue("query", query)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render -s %s --query '%s'", appName, c.Config.Snapshot, query))
	return nil
}

// =============================================================================
// Dimensions
// =============================================================================

// dimension is one filter axis of a selection.
type dimension struct {
	name       string
	candidates func(filter.Candidates) []string
	selected   func(*filter.Selection) *[]string
}

var dimensions = []dimension{
	{
		name:       "Providers",
		candidates: func(c filter.Candidates) []string { return c.ContentProviders },
		selected:   func(s *filter.Selection) *[]string { return &s.ContentProviders },
	},
	{
		name:       "Consumers",
		candidates: func(c filter.Candidates) []string { return c.ContentConsumers },
		selected:   func(s *filter.Selection) *[]string { return &s.ContentConsumers },
	},
	{
		name:       "Extension points",
		candidates: func(c filter.Candidates) []string { return c.ExtensionPoints },
		selected:   func(s *filter.Selection) *[]string { return &s.ExtensionPoints },
	},
	{
		name:       "EP consumers",
		candidates: func(c filter.Candidates) []string { return c.ContentConsumersForExtensionPoint },
		selected:   func(s *filter.Selection) *[]string { return &s.ContentConsumersForExtensionPoint },
	},
}

// =============================================================================
// ExploreModel - Interactive mode and filter selection
// =============================================================================

// ExploreSelection holds the view chosen on exit.
type ExploreSelection struct {
	Mode      graph.Mode
	Selection filter.Selection
}

// ExploreModel is the bubbletea model of the explore command.
type ExploreModel struct {
	ctx    context.Context
	runner *pipeline.Runner

	Mode      graph.Mode
	Selection filter.Selection
	Dim       int
	Cursor    int
	Offset    int
	Height    int

	Data       graph.GraphData
	Candidates filter.Candidates
	Err        error

	Selected *ExploreSelection
}

// NewExploreModel creates the model and builds the initial graph.
func NewExploreModel(ctx context.Context, runner *pipeline.Runner, mode graph.Mode, sel filter.Selection) ExploreModel {
	m := ExploreModel{
		ctx:       ctx,
		runner:    runner,
		Mode:      graph.ModeOrDefault(string(mode)),
		Selection: sel,
		Height:    12,
	}
	return m.reload()
}

// reload rebuilds the graph and candidates for the current view.
func (m ExploreModel) reload() ExploreModel {
	m.Data, _, _, m.Err = m.runner.GraphWithCacheInfo(m.ctx, m.Mode, m.Selection)
	if m.Err == nil {
		m.Candidates, m.Err = m.runner.Candidates(m.ctx, m.Mode)
	}
	if n := len(m.items()); m.Cursor >= n {
		m.Cursor = max(n-1, 0)
	}
	m.Offset = min(m.Offset, m.Cursor)
	return m
}

func (m ExploreModel) items() []string {
	return dimensions[m.Dim].candidates(m.Candidates)
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.Mode = shiftMode(m.Mode, 1)
			return m.reload(), nil
		case "shift+tab":
			m.Mode = shiftMode(m.Mode, -1)
			return m.reload(), nil
		case "right", "l":
			m.Dim = (m.Dim + 1) % len(dimensions)
			m.Cursor, m.Offset = 0, 0
		case "left", "h":
			m.Dim = (m.Dim + len(dimensions) - 1) % len(dimensions)
			m.Cursor, m.Offset = 0, 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.items())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "space":
			items := m.items()
			if len(items) == 0 {
				return m, nil
			}
			sel := m.Selection
			ids := dimensions[m.Dim].selected(&sel)
			*ids = filter.Toggle(*ids, items[m.Cursor])
			m.Selection = sel
			return m.reload(), nil
		case "c":
			sel := m.Selection
			*dimensions[m.Dim].selected(&sel) = nil
			m.Selection = sel
			return m.reload(), nil
		case "C":
			m.Selection = filter.Selection{}
			return m.reload(), nil
		case "enter":
			m.Selected = &ExploreSelection{Mode: m.Mode, Selection: m.Selection.Normalize()}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

// shiftMode steps through graph.Modes, wrapping around.
func shiftMode(mode graph.Mode, step int) graph.Mode {
	i := slices.Index(graph.Modes, mode)
	n := len(graph.Modes)
	return graph.Modes[((i+step)%n+n)%n]
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore"))
	b.WriteString("  ")
	for i, mode := range graph.Modes {
		if i > 0 {
			b.WriteString(listDimStyle.Render(" │ "))
		}
		if mode == m.Mode {
			b.WriteString(tabActiveStyle.Render(string(mode)))
		} else {
			b.WriteString(listDimStyle.Render(string(mode)))
		}
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab mode  ←/→ filter  ↑/↓ move  space toggle  c clear  ⏎ done  q quit"))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.Err.Error())
		return b.String()
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(m.filterView()), " ", m.columnsView()))
	b.WriteString("\n")
	stats := fmt.Sprintf("  %d nodes · %d edges", len(m.Data.Nodes), len(m.Data.Dependencies))
	b.WriteString(listDimStyle.Render(stats))
	if m.Data.IsEmpty() {
		b.WriteString("  " + StyleWarning.Render("no data available"))
	}
	return b.String()
}

// filterView lists the candidates of the focused dimension. An empty
// selection shows every candidate as selected.
func (m ExploreModel) filterView() string {
	var b strings.Builder
	d := dimensions[m.Dim]
	sel := m.Selection
	selected := *d.selected(&sel)

	b.WriteString(StyleHighlight.Render(d.name))
	if len(selected) == 0 {
		b.WriteString(listDimStyle.Render(" (all)"))
	}
	b.WriteString("\n")

	items := m.items()
	if len(items) == 0 {
		b.WriteString(listDimStyle.Render("—"))
		return b.String()
	}
	end := min(m.Offset+m.Height, len(items))
	for i := m.Offset; i < end; i++ {
		id := items[i]
		mark := "[ ]"
		if len(selected) == 0 || slices.Contains(selected, id) {
			mark = "[x]"
		}
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + mark + " " + id
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("[%d/%d]", m.Cursor+1, len(items))))
	return b.String()
}

// columnsView renders the graph as a table with one column per node kind,
// in layout order.
func (m ExploreModel) columnsView() string {
	kinds := m.Mode.Columns()
	headers := make([]string, len(kinds))
	cols := make([][]string, len(kinds))
	rows := 0
	for i, k := range kinds {
		nodes := m.Data.NodesOfKind(k)
		headers[i] = fmt.Sprintf("%s (%d)", k, len(nodes))
		for _, n := range nodes {
			cols[i] = append(cols[i], n.DisplayLabel())
		}
		rows = max(rows, len(cols[i]))
	}
	rows = min(rows, m.Height)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			return lipgloss.NewStyle()
		})
	for r := 0; r < rows; r++ {
		row := make([]string, len(kinds))
		for c := range kinds {
			if r < len(cols[c]) {
				row[c] = cols[c][r]
			}
		}
		t.Row(row...)
	}
	return t.Render()
}
