package ml

import (
	"context"
	"math/rand/v2"
)

// Forest is a bagged ensemble of regression trees for a single target.
type Forest struct {
	params Params
	seed   uint64
	trees  []*regressionTree
}

// NewForest returns an unfitted forest. Equal seeds give equal forests.
func NewForest(p Params, seed uint64) *Forest {
	return &Forest{params: p, seed: seed}
}

// Fit trains the forest on bootstrap samples of (x, y).
func (f *Forest) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return ErrEmptyInput
	}
	n := len(x)
	trees := max(f.params.NEstimators, 1)
	f.trees = make([]*regressionTree, 0, trees)
	sample := make([]int, n)
	for t := 0; t < trees; t++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rng := rand.New(rand.NewPCG(f.seed, uint64(t)))
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		f.trees = append(f.trees, fitTree(x, y, sample, f.params))
	}
	return nil
}

// Predict averages the trees' predictions for one row.
func (f *Forest) Predict(row []float64) float64 {
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(row)
	}
	return sum / float64(len(f.trees))
}

// MultiOutputForest predicts several targets jointly with one forest per
// target column.
type MultiOutputForest struct {
	Params  Params
	seed    uint64
	forests []*Forest
}

// NewMultiOutputForest returns an unfitted model.
func NewMultiOutputForest(p Params, seed uint64) *MultiOutputForest {
	return &MultiOutputForest{Params: p, seed: seed}
}

// Fit trains one forest per column of y.
func (m *MultiOutputForest) Fit(ctx context.Context, x, y [][]float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return ErrEmptyInput
	}
	targets := len(y[0])
	m.forests = make([]*Forest, targets)
	col := make([]float64, len(y))
	for j := 0; j < targets; j++ {
		for i, row := range y {
			col[i] = row[j]
		}
		f := NewForest(m.Params, m.seed+uint64(j))
		if err := f.Fit(ctx, x, col); err != nil {
			return err
		}
		m.forests[j] = f
	}
	return nil
}

// Predict returns one prediction row per input row.
func (m *MultiOutputForest) Predict(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		pred := make([]float64, len(m.forests))
		for j, f := range m.forests {
			pred[j] = f.Predict(row)
		}
		out[i] = pred
	}
	return out
}
