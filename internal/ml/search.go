package ml

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SearchConfig controls RandomizedSearch.
type SearchConfig struct {
	Iterations int
	Folds      int
	Seed       uint64
	// Workers bounds concurrent trials; 0 uses every CPU.
	Workers int
}

// Trial is one sampled configuration and its cross-validated score.
type Trial struct {
	Params Params
	// Score is the negative mean squared error over folds and targets.
	Score float64
}

// SearchResult describes the outcome of a search.
type SearchResult struct {
	Best    Params
	Score   float64
	Trials  []Trial
	Skipped bool
}

var depthChoices = []int{0, 10, 20}

// SampleParams draws n configurations from the search space.
func SampleParams(n int, seed uint64) []Params {
	rng := rand.New(rand.NewPCG(seed, 0))
	out := make([]Params, n)
	for i := range out {
		out[i] = Params{
			NEstimators:     50 + rng.IntN(100),
			MaxDepth:        depthChoices[rng.IntN(len(depthChoices))],
			MinSamplesSplit: 2 + rng.IntN(4),
			MinSamplesLeaf:  1 + rng.IntN(5),
		}
	}
	return out
}

// RandomizedSearch cross-validates sampled configurations on (x, y), then
// refits the best one on all rows. With fewer than two rows the search is
// skipped and DefaultParams is fitted.
func RandomizedSearch(ctx context.Context, x, y [][]float64, cfg SearchConfig) (*MultiOutputForest, SearchResult, error) {
	if len(x) == 0 {
		return nil, SearchResult{}, ErrEmptyInput
	}

	var result SearchResult
	if len(x) < 2 || cfg.Iterations <= 0 {
		result = SearchResult{Best: DefaultParams, Score: math.NaN(), Skipped: true}
	} else {
		trials, err := runTrials(ctx, x, y, cfg)
		if err != nil {
			return nil, SearchResult{}, err
		}
		result.Trials = trials
		result.Best, result.Score = trials[0].Params, trials[0].Score
		for _, t := range trials[1:] {
			if t.Score > result.Score {
				result.Best, result.Score = t.Params, t.Score
			}
		}
	}

	model := NewMultiOutputForest(result.Best, cfg.Seed)
	if err := model.Fit(ctx, x, y); err != nil {
		return nil, SearchResult{}, err
	}
	return model, result, nil
}

func runTrials(ctx context.Context, x, y [][]float64, cfg SearchConfig) ([]Trial, error) {
	folds := KFold(len(x), max(cfg.Folds, 2))
	candidates := SampleParams(cfg.Iterations, cfg.Seed)
	trials := make([]Trial, len(candidates))

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range candidates {
		g.Go(func() error {
			score, err := crossValidate(gctx, x, y, folds, p, cfg.Seed)
			if err != nil {
				return err
			}
			trials[i] = Trial{Params: p, Score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trials, nil
}

func crossValidate(ctx context.Context, x, y [][]float64, folds [][2]int, p Params, seed uint64) (float64, error) {
	var total float64
	for _, fold := range folds {
		trainX := make([][]float64, 0, len(x)-(fold[1]-fold[0]))
		trainY := make([][]float64, 0, cap(trainX))
		trainX = append(append(trainX, x[:fold[0]]...), x[fold[1]:]...)
		trainY = append(append(trainY, y[:fold[0]]...), y[fold[1]:]...)

		model := NewMultiOutputForest(p, seed)
		if err := model.Fit(ctx, trainX, trainY); err != nil {
			return 0, err
		}
		pred := model.Predict(x[fold[0]:fold[1]])
		truth := y[fold[0]:fold[1]]

		var mse float64
		col, colPred := make([]float64, len(truth)), make([]float64, len(truth))
		for j := range truth[0] {
			for i := range truth {
				col[i], colPred[i] = truth[i][j], pred[i][j]
			}
			mse += MeanSquaredError(col, colPred)
		}
		total += mse / float64(len(truth[0]))
	}
	return -total / float64(len(folds)), nil
}
