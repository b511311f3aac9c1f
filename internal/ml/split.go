package ml

import (
	"math"
	"math/rand/v2"
)

// TrainTestSplit shuffles row indices 0..n-1 with seed and holds out
// ceil(testFraction*n) of them, always leaving at least one training row.
func TrainTestSplit(n int, testFraction float64, seed uint64) (train, test []int) {
	if n <= 0 {
		return nil, nil
	}
	perm := rand.New(rand.NewPCG(seed, 0)).Perm(n)
	testSize := int(math.Ceil(testFraction * float64(n)))
	testSize = min(max(testSize, 0), n-1)
	return perm[testSize:], perm[:testSize]
}

// KFold splits 0..n-1 into k contiguous folds. The first n%k folds get one
// extra row. Each fold is returned as [start, end).
func KFold(n, k int) [][2]int {
	if k <= 0 || n <= 0 {
		return nil
	}
	k = min(k, n)
	folds := make([][2]int, 0, k)
	start := 0
	for i := 0; i < k; i++ {
		size := n / k
		if i < n%k {
			size++
		}
		folds = append(folds, [2]int{start, start + size})
		start += size
	}
	return folds
}

// Rows picks the rows at idx.
func Rows(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = x[j]
	}
	return out
}
