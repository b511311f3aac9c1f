package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/report"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every pipeline stage in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.collect(ctx); err != nil {
				return err
			}
			sum, err := a.extract(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("games table written", zap.Int("rows", sum.Rows))

			res, err := a.train(ctx)
			if err != nil {
				return err
			}
			if res.Evaluation != nil {
				report.WriteEvaluation(cmd.OutOrStdout(), *res.Evaluation)
			}
			return nil
		},
	}
	addCollectFlags(cmd)
	return cmd
}
