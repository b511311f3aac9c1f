package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/ml"
	"github.com/nflstats/predictor/internal/report"
	"github.com/nflstats/predictor/internal/usecase"
)

func newTrainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Fit the model and store next-game predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.train(cmd.Context())
			if err != nil {
				return err
			}
			if res.Evaluation != nil {
				report.WriteEvaluation(cmd.OutOrStdout(), *res.Evaluation)
			}
			return nil
		},
	}
}

func (a *app) train(ctx context.Context) (usecase.TrainResult, error) {
	repo, err := a.predictions(ctx)
	if err != nil {
		return usecase.TrainResult{}, fmt.Errorf("failed to open prediction store: %w", err)
	}
	defer repo.Close()
	a.logger.Info("prediction store ready", zap.String("store", storeLabel(a.cfg.DatabaseURL)))

	rdb := a.redis(ctx)
	defer closeRedis(rdb)

	trainer := usecase.NewTrainerUseCase(a.gameTable(), repo, statisticsCache(rdb, a.cfg), usecase.TrainerConfig{
		Search: ml.SearchConfig{
			Iterations: a.cfg.SearchIterations,
			Folds:      a.cfg.CVFolds,
			Seed:       a.cfg.RandomSeed,
			Workers:    a.cfg.SearchWorkers,
		},
		TestFraction:       a.cfg.TestFraction,
		ReplacePredictions: a.cfg.PredictionsReplace,
	}, a.logger)

	res, err := trainer.Train(ctx)
	if err != nil {
		return res, fmt.Errorf("training failed: %w", err)
	}
	return res, nil
}
