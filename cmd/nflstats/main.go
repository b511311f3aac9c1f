package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nflstats/predictor/pkg/config"
	"github.com/nflstats/predictor/pkg/logger"
	"github.com/nflstats/predictor/pkg/metrics"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "nflstats",
		Short:         "Collect NFL box scores, train a stat model and serve its predictions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			metrics.Init()
			a.cfg, a.logger = cfg, log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("database-url", "", "postgres DSN or sqlite://path")
	pf.String("scores-dir", "", "directory of raw box-score documents")
	pf.String("games-csv", "", "path of the aggregated games table")

	rootCmd.AddCommand(newCollectCmd(a))
	rootCmd.AddCommand(newExtractCmd(a))
	rootCmd.AddCommand(newTrainCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newRunCmd(a))

	return rootCmd
}
