package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/knotmap/knotmap/pkg/graph"
	kio "github.com/knotmap/knotmap/pkg/io"
	"github.com/knotmap/knotmap/pkg/metrics"
	"github.com/knotmap/knotmap/pkg/pipeline"
)

// rankCommand creates the rank command for scoring nodes by importance.
func (c *CLI) rankCommand() *cobra.Command {
	var (
		top         int
		interactive bool
	)
	opts := pipeline.Options{}
	c.Config.applyDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "rank [graph.json]",
		Short: "Score nodes by importance and show the top of the list",
		Long: `Score nodes by importance and show the top of the list.

The rank command builds the graph and computes per-node importance from
PageRank, betweenness centrality, descendant counts, and entity counts,
combined into a single composite score. The highest-scoring nodes are
printed as a table.

Use --interactive to browse the full ranking in a scrollable view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRank(args[0], opts, top, interactive)
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 20, "number of nodes to show")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the ranking interactively")
	cmd.Flags().IntVar(&opts.NodeLimit, "node-limit", opts.NodeLimit, "maximum number of nodes to keep")
	cmd.Flags().Float64Var(&opts.MinEdgeConfidence, "min-confidence", opts.MinEdgeConfidence, "drop non-parent edges below this confidence")
	cmd.Flags().IntVar(&opts.PageRankIterations, "pagerank-iterations", opts.PageRankIterations, "maximum PageRank iterations")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for reproducible scores")

	return cmd
}

// runRank builds the graph, computes importance, and presents the ranking.
func (c *CLI) runRank(input string, opts pipeline.Options, top int, interactive bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	in, err := kio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load export %s: %w", input, err)
	}

	g, _ := graph.Build(in.Nodes, in.Edges, opts.BuildOptions())
	if g.NodeCount() == 0 {
		printInfo("Graph is empty, nothing to rank")
		return nil
	}

	imp := metrics.Compute(g, opts.MetricsOptions())
	if len(imp.CycleNodes) > 0 {
		printWarning("Hierarchy cycles detected at %d node(s), descendant counts are partial", len(imp.CycleNodes))
	}

	ranked := imp.Ranked()

	if interactive {
		model := NewRankListModel(g, ranked)
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return fmt.Errorf("interactive ranking: %w", err)
		}
		return nil
	}

	if top > len(ranked) {
		top = len(ranked)
	}
	printRankTable(g, ranked[:top])
	return nil
}

// printRankTable renders the top records as a bordered table.
func printRankTable(g *graph.Graph, records []metrics.Record) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		name := rec.NodeID
		if n, ok := g.Node(rec.NodeID); ok {
			name = n.DisplayName()
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			name,
			fmt.Sprintf("%.4f", rec.CompositeImportance),
			fmt.Sprintf("%.4f", rec.PageRank),
			fmt.Sprintf("%.4f", rec.Betweenness),
			fmt.Sprintf("%d", rec.DescendantCount),
			fmt.Sprintf("%d", rec.EntityCount),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Node", "Score", "PageRank", "Between", "Desc", "Entities").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			if col == 1 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	fmt.Println(t.Render())
}
