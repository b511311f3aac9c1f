package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nflstats/predictor/internal/entity"
	"github.com/nflstats/predictor/internal/ml"
	"github.com/nflstats/predictor/internal/testfixture"
)

func trainerConfig() TrainerConfig {
	return TrainerConfig{
		Search:       ml.SearchConfig{Iterations: 2, Folds: 3, Seed: 42, Workers: 2},
		TestFraction: 0.2,
	}
}

func seasonGames(players, weeks int) []entity.GameRecord {
	start := time.Date(2022, time.September, 11, 0, 0, 0, 0, time.UTC)
	var games []entity.GameRecord
	for p := 0; p < players; p++ {
		for w := 0; w < weeks; w++ {
			games = append(games, entity.GameRecord{
				Player: fmt.Sprintf("Player %d", p),
				Team:   "BUF",
				Season: 2022,
				Date:   start.AddDate(0, 0, 7*w),
				Stats: entity.StatLine{
					PassYds: float64(200 + 10*p + w),
					PassTD:  float64(w % 3),
					RushYds: float64(20 * p),
					Catches: float64(p + w%2),
					RecYds:  float64(15 * w),
				},
			})
		}
	}
	return games
}

func TestTrainEndToEndFromDocuments(t *testing.T) {
	ctx := context.Background()
	_, docs, table := newStores(t)
	logger := zaptest.NewLogger(t)

	for i, name := range []string{"202009130nyj.htm", "202009200mia.htm", "202009270rai.htm"} {
		frag := testfixture.BoxScoreFragment(testfixture.Player{
			Name:  "Josh Allen",
			Team:  "BUF",
			Stats: entity.StatLine{PassYds: float64(300 + 10*i), PassTD: float64(i + 1), RushYds: 30},
		})
		require.NoError(t, docs.Save(ctx, name, frag))
	}

	sum, err := NewExtractorUseCase(docs, table, true, logger).Extract(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, sum.Rows)

	repo := &memPredictionRepo{}
	cache := &memStatisticsCache{cached: true}
	res, err := NewTrainerUseCase(table, repo, cache, trainerConfig(), logger).Train(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.Games)
	assert.Equal(t, 2, res.LagRows)
	assert.Equal(t, 1, res.TrainRows)
	assert.Equal(t, 1, res.TestRows)
	assert.True(t, res.Search.Skipped, "one training row is too few to search")
	require.NotNil(t, res.Evaluation)
	assert.Len(t, res.Evaluation.Targets, entity.NumStats)

	require.Len(t, res.Predictions, 1)
	p := res.Predictions[0]
	assert.Equal(t, "Josh Allen", p.Player)
	assert.Contains(t, []float64{310, 320}, p.Stats.PassYds)
	assert.InDelta(t, entity.FantasyPoints(p.Stats, true), p.FantasyPPR, 1e-9)

	assert.True(t, res.Persisted)
	require.Len(t, repo.rows, 1)
	assert.Equal(t, res.RunID, *repo.rows[0].RunID)
	assert.Equal(t, 1, cache.invalidated)
	assert.False(t, cache.cached)
}

func TestTrainAppendsByDefault(t *testing.T) {
	ctx := context.Background()
	_, _, table := newStores(t)
	require.NoError(t, table.Replace(ctx, seasonGames(6, 5)))

	repo := &memPredictionRepo{}
	uc := NewTrainerUseCase(table, repo, nil, trainerConfig(), zaptest.NewLogger(t))

	first, err := uc.Train(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, first.LagRows)
	assert.Equal(t, 5, first.TestRows)
	assert.False(t, first.Search.Skipped)
	assert.Len(t, first.Search.Trials, 2)
	require.NotNil(t, first.Evaluation)
	assert.Greater(t, first.Evaluation.Combined, 0.0)
	require.Len(t, first.Predictions, 6)
	assert.Equal(t, "Player 0", first.Predictions[0].Player)

	second, err := uc.Train(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Len(t, repo.rows, 12)
	assert.Equal(t, first.Predictions, second.Predictions, "a fixed seed gives the same model")
}

func TestTrainReplaceMode(t *testing.T) {
	ctx := context.Background()
	_, _, table := newStores(t)
	require.NoError(t, table.Replace(ctx, seasonGames(3, 3)))

	repo := &memPredictionRepo{}
	cfg := trainerConfig()
	cfg.ReplacePredictions = true
	uc := NewTrainerUseCase(table, repo, nil, cfg, zaptest.NewLogger(t))

	_, err := uc.Train(ctx)
	require.NoError(t, err)
	_, err = uc.Train(ctx)
	require.NoError(t, err)
	assert.Len(t, repo.rows, 3)
}

func TestTrainSurvivesStorageFailure(t *testing.T) {
	ctx := context.Background()
	_, _, table := newStores(t)
	require.NoError(t, table.Replace(ctx, seasonGames(2, 4)))

	repo := &memPredictionRepo{writeErr: errBoom}
	cache := &memStatisticsCache{}
	res, err := NewTrainerUseCase(table, repo, cache, trainerConfig(), zaptest.NewLogger(t)).Train(ctx)
	require.NoError(t, err)
	assert.False(t, res.Persisted)
	assert.Len(t, res.Predictions, 2)
	assert.Zero(t, cache.invalidated)
}

func TestTrainNeedsHistory(t *testing.T) {
	ctx := context.Background()
	_, _, table := newStores(t)
	require.NoError(t, table.Replace(ctx, seasonGames(4, 1)))

	_, err := NewTrainerUseCase(table, &memPredictionRepo{}, nil, trainerConfig(), zaptest.NewLogger(t)).Train(ctx)
	assert.ErrorIs(t, err, ErrNotEnoughHistory)
}

func TestTrainSingleLagRowSkipsEvaluation(t *testing.T) {
	ctx := context.Background()
	_, _, table := newStores(t)
	require.NoError(t, table.Replace(ctx, seasonGames(1, 2)))

	repo := &memPredictionRepo{}
	res, err := NewTrainerUseCase(table, repo, nil, trainerConfig(), zaptest.NewLogger(t)).Train(ctx)
	require.NoError(t, err)
	assert.Nil(t, res.Evaluation)
	assert.Zero(t, res.TestRows)
	require.Len(t, res.Predictions, 1)
	assert.InDelta(t, 201, res.Predictions[0].Stats.PassYds, 1e-9)
}
