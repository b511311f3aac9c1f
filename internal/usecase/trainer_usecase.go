package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/dataset"
	"github.com/nflstats/predictor/internal/entity"
	"github.com/nflstats/predictor/internal/ml"
	"github.com/nflstats/predictor/internal/repository"
	"github.com/nflstats/predictor/pkg/metrics"
)

// ErrNotEnoughHistory is returned when no player has two or more games.
var ErrNotEnoughHistory = errors.New("no player has a previous game to learn from")

// TrainResult describes a training run.
type TrainResult struct {
	RunID     string
	Games     int
	LagRows   int
	TrainRows int
	TestRows  int
	Search    ml.SearchResult
	// Evaluation is nil when there were too few rows to hold any out.
	Evaluation  *ml.Evaluation
	Predictions []entity.Prediction
	Persisted   bool
}

// Trainer fits the model and stores next-game predictions.
type Trainer interface {
	Train(ctx context.Context) (TrainResult, error)
}

// TrainerConfig holds the trainer's settings.
type TrainerConfig struct {
	Search             ml.SearchConfig
	TestFraction       float64
	ReplacePredictions bool
}

type trainerUseCase struct {
	table  repository.GameTableRepository
	preds  repository.PredictionRepository
	cache  repository.StatisticsCache // optional
	cfg    TrainerConfig
	logger *zap.Logger
}

// NewTrainerUseCase creates a new instance of the trainer use case. cache may
// be nil.
func NewTrainerUseCase(
	table repository.GameTableRepository,
	preds repository.PredictionRepository,
	cache repository.StatisticsCache,
	cfg TrainerConfig,
	logger *zap.Logger,
) Trainer {
	return &trainerUseCase{
		table:  table,
		preds:  preds,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// Train runs the whole pipeline. A failure to store predictions is logged
// and reported through TrainResult.Persisted rather than as an error.
func (uc *trainerUseCase) Train(ctx context.Context) (TrainResult, error) {
	res := TrainResult{RunID: uuid.NewString()}
	log := uc.logger.With(zap.String("run_id", res.RunID))

	games, err := uc.table.Load(ctx)
	if err != nil {
		return res, fmt.Errorf("load games table: %w", err)
	}
	res.Games = len(games)

	lagged := dataset.BuildLagged(games)
	res.LagRows = len(lagged)
	if len(lagged) == 0 {
		return res, ErrNotEnoughHistory
	}
	x, y := dataset.Features(lagged), dataset.Targets(lagged)

	var trainIdx, testIdx []int
	if len(lagged) >= 2 {
		trainIdx, testIdx = ml.TrainTestSplit(len(lagged), uc.cfg.TestFraction, uc.cfg.Search.Seed)
	} else {
		trainIdx = []int{0}
	}
	res.TrainRows, res.TestRows = len(trainIdx), len(testIdx)

	xTrain := ml.Rows(x, trainIdx)
	scaler, err := ml.FitScaler(xTrain)
	if err != nil {
		return res, err
	}

	log.Info("searching model parameters",
		zap.Int("train_rows", res.TrainRows),
		zap.Int("test_rows", res.TestRows),
		zap.Int("iterations", uc.cfg.Search.Iterations),
		zap.Strings("features", dataset.FeatureColumns()),
	)
	model, search, err := ml.RandomizedSearch(ctx, scaler.Transform(xTrain), ml.Rows(y, trainIdx), uc.cfg.Search)
	if err != nil {
		return res, fmt.Errorf("model search: %w", err)
	}
	res.Search = search
	log.Info("model selected",
		zap.Bool("search_skipped", search.Skipped),
		zap.Int("n_estimators", search.Best.NEstimators),
		zap.Int("max_depth", search.Best.MaxDepth),
		zap.Int("min_samples_split", search.Best.MinSamplesSplit),
		zap.Int("min_samples_leaf", search.Best.MinSamplesLeaf),
		zap.Float64("cv_score", search.Score),
	)

	if len(testIdx) > 0 {
		pred := model.Predict(scaler.Transform(ml.Rows(x, testIdx)))
		ev := ml.Evaluate(entity.StatColumns, ml.Rows(y, testIdx), pred)
		res.Evaluation = &ev
		metrics.ModelScore.WithLabelValues("combined").Set(ev.Combined)
		log.Info("model evaluated", zap.Float64("combined_score", ev.Combined))
	} else {
		log.Warn("too few rows to evaluate the model")
	}

	latest := dataset.LatestPerPlayer(lagged)
	forecast := model.Predict(scaler.Transform(dataset.Features(latest)))
	res.Predictions = make([]entity.Prediction, len(latest))
	for i, row := range latest {
		res.Predictions[i] = entity.NewPrediction(row.Player, entity.StatLineFromValues(forecast[i]))
	}

	res.Persisted = uc.persist(ctx, log, res.RunID, res.Predictions)
	return res, nil
}

func (uc *trainerUseCase) persist(ctx context.Context, log *zap.Logger, runID string, preds []entity.Prediction) bool {
	write := uc.preds.Append
	if uc.cfg.ReplacePredictions {
		write = uc.preds.Replace
	}
	if err := write(ctx, runID, preds); err != nil {
		metrics.PredictionsWrittenTotal.WithLabelValues("failure").Add(float64(len(preds)))
		log.Error("failed to store predictions", zap.Int("predictions", len(preds)), zap.Error(err))
		return false
	}
	metrics.PredictionsWrittenTotal.WithLabelValues("success").Add(float64(len(preds)))
	log.Info("predictions stored",
		zap.Int("predictions", len(preds)),
		zap.Bool("replaced", uc.cfg.ReplacePredictions),
	)

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			log.Warn("failed to invalidate statistics cache", zap.Error(err))
		}
	}
	return true
}
