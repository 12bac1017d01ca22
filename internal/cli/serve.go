package cli

import (
	"github.com/spf13/cobra"

	"github.com/knotmap/knotmap/internal/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the pipeline as an HTTP API",
		Long: `Expose the pipeline as an HTTP API.

Endpoints:

  POST /v1/layout   run the full pipeline, returns an element document
  POST /v1/rank     score nodes by importance, returns the ranking
  GET  /healthz     liveness check

Both POST endpoints accept a JSON body with "nodes", "edges", and an
optional "options" object mirroring the layout command's flags. The
server shuts down gracefully on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(c.newRunner(noCache), c.Logger)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
