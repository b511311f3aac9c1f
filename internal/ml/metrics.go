package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Combined score weights.
const (
	mseWeight = 0.45
	maeWeight = 0.35
	r2Weight  = 0.20
)

// Evaluation holds per-target hold-out metrics.
type Evaluation struct {
	Targets  []string
	MSE      []float64
	MAE      []float64
	R2       []float64
	Combined float64
}

// Evaluate compares predictions with the truth column by column.
func Evaluate(targets []string, yTrue, yPred [][]float64) Evaluation {
	k := len(targets)
	ev := Evaluation{
		Targets: targets,
		MSE:     make([]float64, k),
		MAE:     make([]float64, k),
		R2:      make([]float64, k),
	}
	truth := make([]float64, len(yTrue))
	pred := make([]float64, len(yTrue))
	for j := 0; j < k; j++ {
		for i := range yTrue {
			truth[i] = yTrue[i][j]
			pred[i] = yPred[i][j]
		}
		ev.MSE[j] = MeanSquaredError(truth, pred)
		ev.MAE[j] = MeanAbsoluteError(truth, pred)
		ev.R2[j] = R2(truth, pred)
	}
	ev.Combined = CombinedScore(ev.MSE, ev.MAE, ev.R2)
	return ev
}

// MeanSquaredError of pred against truth.
func MeanSquaredError(truth, pred []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	diff := make([]float64, len(truth))
	floats.SubTo(diff, truth, pred)
	return floats.Dot(diff, diff) / float64(len(truth))
}

// MeanAbsoluteError of pred against truth.
func MeanAbsoluteError(truth, pred []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	diff := make([]float64, len(truth))
	floats.SubTo(diff, truth, pred)
	return floats.Norm(diff, 1) / float64(len(truth))
}

// R2 is the coefficient of determination. A constant truth scores 1 when
// predicted exactly and 0 otherwise.
func R2(truth, pred []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	diff := make([]float64, len(truth))
	floats.SubTo(diff, truth, pred)
	ssRes := floats.Dot(diff, diff)

	mean := floats.Sum(truth) / float64(len(truth))
	var ssTot float64
	for _, v := range truth {
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// CombinedScore folds the per-target metrics into one number in [0, 3].
// Each metric is normalised to [0, 1], multiplied across targets, weighted
// and then rooted by the number of targets. R² below -1 normalises to 0.
func CombinedScore(mse, mae, r2 []float64) float64 {
	k := float64(len(mse))
	if k == 0 {
		return 0
	}
	mseProd, maeProd, r2Prod := 1.0, 1.0, 1.0
	for i := range mse {
		mseProd *= 1 / (1 + mse[i])
		maeProd *= 1 / (1 + mae[i])
		r2Prod *= max((r2[i]+1)/2, 0)
	}
	root := func(v float64) float64 { return math.Pow(v, 1/k) }
	return root(mseWeight*mseProd) + root(maeWeight*maeProd) + root(r2Weight*r2Prod)
}
