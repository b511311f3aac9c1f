package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/usecase"
	"github.com/nflstats/predictor/pkg/retry"
)

func newCollectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Download box scores for the configured seasons and teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.collect(cmd.Context())
			return err
		},
	}
	addCollectFlags(cmd)
	return cmd
}

func addCollectFlags(cmd *cobra.Command) {
	cmd.Flags().Int("season-start", 0, "first season to collect")
	cmd.Flags().Int("season-end", 0, "last season to collect")
	cmd.Flags().String("fetch-mode", "", "browser or http")
}

func (a *app) collect(ctx context.Context) (usecase.CollectSummary, error) {
	docs, err := a.documents()
	if err != nil {
		return usecase.CollectSummary{}, fmt.Errorf("failed to open document store: %w", err)
	}
	rdb := a.redis(ctx)
	defer closeRedis(rdb)

	a.logger.Info("collecting box scores",
		zap.Int("season_start", a.cfg.SeasonStart),
		zap.Int("season_end", a.cfg.SeasonEnd),
		zap.Int("teams", len(a.cfg.Teams)),
		zap.String("fetch_mode", a.cfg.FetchMode),
	)
	collector := usecase.NewCollectorUseCase(a.fetcher(), docs, linkCache(rdb), usecase.CollectorConfig{
		BaseURL:      a.cfg.BaseURL,
		Seasons:      a.cfg.Seasons(),
		Teams:        a.cfg.Teams,
		Retry:        retry.Policy{Attempts: a.cfg.FetchRetries, Backoff: a.cfg.FetchBackoff()},
		LinkCacheTTL: a.cfg.LinkCacheTTL(),
	}, a.logger)

	sum, err := collector.Collect(ctx)
	if err != nil {
		return sum, fmt.Errorf("collection stopped: %w", err)
	}
	return sum, nil
}
