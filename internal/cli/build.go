package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knotmap/knotmap/pkg/graph"
	kio "github.com/knotmap/knotmap/pkg/io"
	"github.com/knotmap/knotmap/pkg/pipeline"
)

// buildCommand creates the build command for assembling graphs from raw exports.
func (c *CLI) buildCommand() *cobra.Command {
	opts := pipeline.Options{}
	c.Config.applyDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "build [graph.json]",
		Short: "Assemble and validate a graph from a raw JSON export",
		Long: `Assemble and validate a graph from a raw JSON export.

The build command reads a graph export (a JSON object with "nodes" and
"edges" lists), filters out self-loops, dangling edges, duplicates, and
low-confidence edges, removes isolated nodes, and reports what was kept
and what was dropped.

Building never fails on content anomalies - bad entries are counted and
skipped. Only a malformed file shape is an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.NodeLimit, "node-limit", opts.NodeLimit, "maximum number of nodes to keep")
	cmd.Flags().Float64Var(&opts.MinEdgeConfidence, "min-confidence", opts.MinEdgeConfidence, "drop non-parent edges below this confidence")
	cmd.Flags().BoolVar(&opts.SkipEdgeFiltering, "no-filter", opts.SkipEdgeFiltering, "keep all edges regardless of confidence")

	return cmd
}

// runBuild imports the raw export, builds the graph, and prints the stats.
func (c *CLI) runBuild(input string, opts pipeline.Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	in, err := kio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load export %s: %w", input, err)
	}

	g, stats := graph.Build(in.Nodes, in.Edges, opts.BuildOptions())

	printSuccess("Graph built")
	printStats(g.NodeCount(), g.EdgeCount(), false)
	printDetail("Nodes: %d in, %d truncated, %d isolated", stats.NodesIn, stats.NodesTruncated, stats.NodesIsolated)
	printDetail("Edges: %d in, %d dropped (%d self-loop, %d dangling, %d duplicate, %d low-confidence)",
		stats.EdgesIn, stats.Dropped(), stats.EdgesSelfLoop, stats.EdgesMissingNode,
		stats.EdgesDuplicate, stats.EdgesLowConfidence)
	if stats.EdgesMissingType > 0 {
		printDetail("Edges defaulted to type %q: %d", graph.EdgeTypeRelated, stats.EdgesMissingType)
	}
	printNewline()
	printNextStep("Rank nodes", appName+" rank "+input)

	return nil
}
