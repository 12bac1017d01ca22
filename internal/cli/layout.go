package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	kio "github.com/knotmap/knotmap/pkg/io"
	"github.com/knotmap/knotmap/pkg/pipeline"
)

// layoutCommand creates the layout command for running the full pipeline.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}
	c.Config.applyDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Run the full pipeline and write an element document",
		Long: `Run the full pipeline and write an element document.

The layout command takes a raw graph export and runs every stage: build,
importance scoring, sparsification, community detection, force-directed
positioning, and export. The output is an elements.json document with
positioned, sized, and colored nodes that a frontend can draw directly.

Runs are reproducible: the same input and seed always produce the same
layout. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayoutPipeline(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.elements.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", opts.Refresh, "recompute even when a cached result exists")

	// Build flags
	cmd.Flags().IntVar(&opts.NodeLimit, "node-limit", opts.NodeLimit, "maximum number of nodes to keep")
	cmd.Flags().Float64Var(&opts.MinEdgeConfidence, "min-confidence", opts.MinEdgeConfidence, "drop non-parent edges below this confidence")
	cmd.Flags().BoolVar(&opts.SkipEdgeFiltering, "no-filter", opts.SkipEdgeFiltering, "keep all edges regardless of confidence")

	// Pipeline flags
	cmd.Flags().BoolVar(&opts.SkipSparsify, "no-sparsify", opts.SkipSparsify, "skip edge sparsification")
	cmd.Flags().IntVar(&opts.ForceIterations, "force-iterations", opts.ForceIterations, "force simulation iterations")
	cmd.Flags().IntVar(&opts.OverlapIterations, "overlap-iterations", opts.OverlapIterations, "overlap resolution iterations")
	cmd.Flags().Float64Var(&opts.ViewportSize, "viewport", opts.ViewportSize, "viewport half-extent for final positions")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for reproducible layouts")

	return cmd
}

// runLayoutPipeline loads the export, executes the pipeline, and writes
// the element document.
func (c *CLI) runLayoutPipeline(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	in, err := kio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load export %s: %w", input, err)
	}

	runner := c.newRunner(noCache)
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("run pipeline: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultOutputPath(input, ".elements.json")
	}

	if err := kio.ExportElements(result.Document, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(result.Document.Nodes), len(result.Document.Edges), result.CacheInfo.ElementsHit)
	if !result.CacheInfo.ElementsHit {
		printDetail("Communities: %d", result.Layout.Stats.Communities)
		if dropped := result.SparsifyStats.EdgesIn - result.SparsifyStats.EdgesKept; dropped > 0 {
			printDetail("Edges sparsified: %d of %d", dropped, result.SparsifyStats.EdgesIn)
		}
		if result.Layout.Stats.FallbackPositions > 0 {
			printWarning("Non-finite positions reset to origin: %d", result.Layout.Stats.FallbackPositions)
		}
	}
	printDetail("Total time: %s", result.Stats.TotalTime.Round(time.Millisecond))
	printNewline()
	printNextStep("Inspect ranking", appName+" rank "+input)

	return nil
}
