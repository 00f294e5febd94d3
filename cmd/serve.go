package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-eda/internal/dashboard"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive dashboard",
	Long: `Serve the dashboard over HTTP. The data file is re-checked on every request,
so edits show up on reload. A missing or empty file is reported on the page
instead of stopping the server.

Endpoints:
  GET /                    dashboard page
  GET /chart/overview.png  per-season mean chart
  GET /chart/team.png      single-team chart
  GET /api/overview        per-season mean series (JSON)
  GET /api/team            single-team series (JSON)
  GET /healthz             data source status`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8501", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := dashboard.New(cache, dataPath)
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Dashboard listening on %s (data: %s)\n", serveAddr, dataPath)
	return srv.Serve(ctx, serveAddr)
}
