package ml

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaler(t *testing.T) {
	x := [][]float64{{1, 5}, {3, 5}, {5, 5}}
	s, err := FitScaler(x)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{3, 5}, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(8.0/3.0), s.Scale[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale[1], "zero variance keeps unit scale")

	out := s.Transform([][]float64{{3, 7}})
	assert.InDelta(t, 0, out[0][0], 1e-12)
	assert.InDelta(t, 2, out[0][1], 1e-12)

	_, err = FitScaler(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestTreeFitsStepFunction(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		x = append(x, []float64{float64(i)})
		if i < 10 {
			y = append(y, 1)
		} else {
			y = append(y, 9)
		}
	}
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	tree := fitTree(x, y, idx, DefaultParams)

	assert.Equal(t, 1.0, tree.predict([]float64{3}))
	assert.Equal(t, 9.0, tree.predict([]float64{15}))
	assert.Len(t, tree.nodes, 3)
	assert.Equal(t, 9.5, tree.nodes[0].threshold)
}

func TestTreeRespectsLimits(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{0, 1, 2, 3}
	idx := []int{0, 1, 2, 3}

	stump := fitTree(x, y, idx, Params{MaxDepth: 1, MinSamplesSplit: 2, MinSamplesLeaf: 1})
	assert.Len(t, stump.nodes, 3)

	leaf := fitTree(x, y, idx, Params{MinSamplesSplit: 5, MinSamplesLeaf: 1})
	assert.Len(t, leaf.nodes, 1)
	assert.Equal(t, 1.5, leaf.predict([]float64{0}))

	wide := fitTree(x, y, idx, Params{MinSamplesSplit: 2, MinSamplesLeaf: 2})
	assert.Len(t, wide.nodes, 3, "leaves need two rows each")
}

func randomRows(n, features int, seed uint64) ([][]float64, []float64) {
	rng := rand.New(rand.NewPCG(seed, 0))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = make([]float64, features)
		for f := range x[i] {
			x[i][f] = math.Round(rng.Float64()*100) / 4
		}
		y[i] = 3*x[i][1] - x[i][2] + rng.NormFloat64()
	}
	return x, y
}

// exhaustiveSplit tries every midpoint of every feature on the full row set.
func exhaustiveSplit(x [][]float64, y []float64) (int, float64) {
	best, bestFeature, bestThreshold := math.Inf(1), -1, 0.0
	for f := range x[0] {
		values := make([]float64, 0, len(x))
		for _, row := range x {
			values = append(values, row[f])
		}
		sort.Float64s(values)
		for k := 1; k < len(values); k++ {
			if values[k] == values[k-1] {
				continue
			}
			threshold := values[k-1] + (values[k]-values[k-1])/2
			var cost float64
			for _, left := range []bool{true, false} {
				var sum, sq, cnt float64
				for i, row := range x {
					if (row[f] <= threshold) == left {
						sum += y[i]
						sq += y[i] * y[i]
						cnt++
					}
				}
				cost += sq - sum*sum/cnt
			}
			if cost < best-1e-9 {
				best, bestFeature, bestThreshold = cost, f, threshold
			}
		}
	}
	return bestFeature, bestThreshold
}

func TestTreeRootSplitMatchesExhaustiveSearch(t *testing.T) {
	x, y := randomRows(300, 5, 7)
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	tree := fitTree(x, y, idx, Params{MaxDepth: 1, MinSamplesSplit: 2, MinSamplesLeaf: 1})

	feature, threshold := exhaustiveSplit(x, y)
	require.Len(t, tree.nodes, 3)
	assert.Equal(t, feature, tree.nodes[0].feature)
	assert.InDelta(t, threshold, tree.nodes[0].threshold, 1e-12)
}

func TestTreeMemorisesBootstrapRows(t *testing.T) {
	x := [][]float64{{1, 5}, {2, 5}, {3, 1}, {4, 1}, {5, 9}}
	y := []float64{10, 20, 30, 40, 50}
	idx := []int{4, 0, 0, 3, 2, 4, 1}

	tree := fitTree(x, y, idx, DefaultParams)
	for _, i := range idx {
		assert.Equal(t, y[i], tree.predict(x[i]), "row %d", i)
	}
}

func BenchmarkFitTree(b *testing.B) {
	x, y := randomRows(3000, 9, 1)
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	b.ResetTimer()
	for range b.N {
		fitTree(x, y, idx, DefaultParams)
	}
}

func linearData(n int) ([][]float64, [][]float64) {
	x := make([][]float64, n)
	y := make([][]float64, n)
	for i := 0; i < n; i++ {
		v := float64(i)
		x[i] = []float64{v, float64(i % 3)}
		y[i] = []float64{2 * v, 10}
	}
	return x, y
}

func TestMultiOutputForestDeterministic(t *testing.T) {
	ctx := context.Background()
	x, y := linearData(30)
	p := Params{NEstimators: 10, MinSamplesSplit: 2, MinSamplesLeaf: 1}

	a := NewMultiOutputForest(p, 42)
	require.NoError(t, a.Fit(ctx, x, y))
	b := NewMultiOutputForest(p, 42)
	require.NoError(t, b.Fit(ctx, x, y))

	pa := a.Predict(x)
	pb := b.Predict(x)
	assert.Equal(t, pa, pb)
	require.Len(t, pa[0], 2)
	assert.Equal(t, 10.0, pa[5][1], "constant target is predicted exactly")
	assert.InDelta(t, 20, pa[10][0], 6)
}

func TestForestHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x, y := linearData(5)
	err := NewMultiOutputForest(DefaultParams, 1).Fit(ctx, x, y)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainTestSplit(t *testing.T) {
	train, test := TrainTestSplit(10, 0.2, 42)
	assert.Len(t, test, 2)
	assert.Len(t, train, 8)

	seen := map[int]bool{}
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i])
		seen[i] = true
	}
	assert.Len(t, seen, 10)

	train2, test2 := TrainTestSplit(10, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	train, test = TrainTestSplit(11, 0.2, 1)
	assert.Len(t, test, 3, "test size rounds up")
	assert.Len(t, train, 8)

	train, test = TrainTestSplit(1, 0.2, 1)
	assert.Len(t, train, 1)
	assert.Empty(t, test)
}

func TestKFold(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 4}, {4, 7}, {7, 10}}, KFold(10, 3))
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, KFold(2, 3))
	assert.Nil(t, KFold(0, 3))
}

func TestSampleParamsRanges(t *testing.T) {
	ps := SampleParams(200, 7)
	depths := map[int]bool{}
	for _, p := range ps {
		assert.GreaterOrEqual(t, p.NEstimators, 50)
		assert.Less(t, p.NEstimators, 150)
		assert.GreaterOrEqual(t, p.MinSamplesSplit, 2)
		assert.Less(t, p.MinSamplesSplit, 6)
		assert.GreaterOrEqual(t, p.MinSamplesLeaf, 1)
		assert.Less(t, p.MinSamplesLeaf, 6)
		depths[p.MaxDepth] = true
	}
	assert.Equal(t, map[int]bool{0: true, 10: true, 20: true}, depths)
	assert.Equal(t, ps[:5], SampleParams(5, 7))
}

func TestRandomizedSearch(t *testing.T) {
	ctx := context.Background()
	x, y := linearData(12)
	cfg := SearchConfig{Iterations: 3, Folds: 3, Seed: 42, Workers: 2}

	model, res, err := RandomizedSearch(ctx, x, y, cfg)
	require.NoError(t, err)
	require.NotNil(t, model)
	assert.False(t, res.Skipped)
	require.Len(t, res.Trials, 3)
	for _, tr := range res.Trials {
		assert.LessOrEqual(t, tr.Score, res.Score)
	}
	assert.Equal(t, res.Best, model.Params)

	cfg.Workers = 1
	_, again, err := RandomizedSearch(ctx, x, y, cfg)
	require.NoError(t, err)
	assert.Equal(t, res.Trials, again.Trials, "worker count does not change results")
}

func TestRandomizedSearchTinyInput(t *testing.T) {
	ctx := context.Background()
	x, y := linearData(1)

	model, res, err := RandomizedSearch(ctx, x, y, SearchConfig{Iterations: 5, Folds: 3, Seed: 1})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, DefaultParams, res.Best)
	assert.Equal(t, [][]float64{{0, 10}}, model.Predict(x))

	_, _, err = RandomizedSearch(ctx, nil, nil, SearchConfig{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMetrics(t *testing.T) {
	truth := []float64{1, 2, 3}
	pred := []float64{1, 2, 5}
	assert.InDelta(t, 4.0/3.0, MeanSquaredError(truth, pred), 1e-12)
	assert.InDelta(t, 2.0/3.0, MeanAbsoluteError(truth, pred), 1e-12)
	assert.InDelta(t, 1-4.0/2.0, R2(truth, pred), 1e-12)

	assert.Equal(t, 1.0, R2([]float64{4, 4}, []float64{4, 4}))
	assert.Equal(t, 0.0, R2([]float64{4, 4}, []float64{4, 5}))
}

func TestCombinedScore(t *testing.T) {
	k := 9
	zeros := make([]float64, k)
	ones := make([]float64, k)
	for i := range ones {
		ones[i] = 1
	}
	perfect := CombinedScore(zeros, zeros, ones)
	want := math.Pow(0.45, 1.0/9) + math.Pow(0.35, 1.0/9) + math.Pow(0.20, 1.0/9)
	assert.InDelta(t, want, perfect, 1e-12)

	worse := CombinedScore(ones, ones, zeros)
	assert.Less(t, worse, perfect)

	ev := Evaluate([]string{"A", "B"}, [][]float64{{1, 2}, {3, 4}}, [][]float64{{1, 2}, {3, 4}})
	assert.Equal(t, []float64{0, 0}, ev.MSE)
	assert.Equal(t, []float64{1, 1}, ev.R2)
	assert.InDelta(t, math.Pow(0.45, 0.5)+math.Pow(0.35, 0.5)+math.Pow(0.2, 0.5), ev.Combined, 1e-12)
}
