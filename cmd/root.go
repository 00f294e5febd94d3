package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pable/go-football-eda/internal/loader"
	"github.com/pable/go-football-eda/internal/logger"
)

// defaultDataPath is used when neither --data nor FOOTBALL_DATA is set.
const defaultDataPath = "filtered_football_data.csv"

var (
	dataPath string
	logLevel string

	// cache is shared by every command so the shell and the dashboard reuse parsed tables.
	cache = loader.NewCache()
)

var rootCmd = &cobra.Command{
	Use:   "footballeda",
	Short: "Football team performance explorer",
	Long: `Explore season-level offensive statistics for football teams from a CSV file:
per-season means across a team selection, single-team trends, charts and an
interactive dashboard.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "path to the team-season CSV (.csv or .csv.zst); falls back to $FOOTBALL_DATA, then "+defaultDataPath)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (falls back to $LOG_LEVEL)")

	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.Init(cmd.ErrOrStderr(), logLevel)
	dataPath = firstNonEmpty(dataPath, os.Getenv("FOOTBALL_DATA"), defaultDataPath)
	logger.Debug("data source", "path", dataPath)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
