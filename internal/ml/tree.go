package ml

import (
	"cmp"
	"math"
	"slices"
)

// Params are the forest hyper-parameters explored by the search.
type Params struct {
	NEstimators     int
	MaxDepth        int // 0 means unbounded
	MinSamplesSplit int
	MinSamplesLeaf  int
}

// DefaultParams is used when there is too little data to search.
var DefaultParams = Params{
	NEstimators:     100,
	MaxDepth:        0,
	MinSamplesSplit: 2,
	MinSamplesLeaf:  1,
}

type node struct {
	feature   int // -1 marks a leaf
	threshold float64
	left      int
	right     int
	value     float64
}

// regressionTree is a CART tree minimising squared error.
type regressionTree struct {
	nodes []node
}

// treeBuilder keeps the rows of every open node as contiguous segments.
// rows holds them in bootstrap order and order[f] holds them sorted by
// feature f, so splits never re-sort.
type treeBuilder struct {
	x       [][]float64
	y       []float64
	params  Params
	nodes   []node
	rows    []int
	order   [][]int
	scratch []int
}

func fitTree(x [][]float64, y []float64, idx []int, p Params) *regressionTree {
	b := &treeBuilder{x: x, y: y, params: p, rows: slices.Clone(idx)}
	if len(idx) > 0 {
		b.order = make([][]int, len(x[idx[0]]))
		for f := range b.order {
			o := slices.Clone(idx)
			slices.SortStableFunc(o, func(a, c int) int {
				return cmp.Compare(x[a][f], x[c][f])
			})
			b.order[f] = o
		}
		b.scratch = make([]int, 0, len(idx))
	}
	b.build(0, len(idx), 0)
	return &regressionTree{nodes: b.nodes}
}

func (b *treeBuilder) leaf(value float64) int {
	b.nodes = append(b.nodes, node{feature: -1, value: value})
	return len(b.nodes) - 1
}

func (b *treeBuilder) build(lo, hi, depth int) int {
	n := hi - lo
	var sum, sumSq float64
	for _, i := range b.rows[lo:hi] {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	mean := sum / float64(n)
	sse := sumSq - sum*sum/float64(n)

	p := b.params
	if n < p.MinSamplesSplit || n < 2*p.MinSamplesLeaf || sse <= 1e-12 ||
		(p.MaxDepth > 0 && depth >= p.MaxDepth) {
		return b.leaf(mean)
	}

	feature, threshold, ok := b.bestSplit(lo, hi)
	if !ok {
		return b.leaf(mean)
	}

	mid := lo + b.partition(b.rows[lo:hi], feature, threshold)
	for f := range b.order {
		b.partition(b.order[f][lo:hi], feature, threshold)
	}

	self := len(b.nodes)
	b.nodes = append(b.nodes, node{feature: feature, threshold: threshold, value: mean})
	l := b.build(lo, mid, depth+1)
	r := b.build(mid, hi, depth+1)
	b.nodes[self].left = l
	b.nodes[self].right = r
	return self
}

// partition moves rows going left to the front of s, keeping the relative
// order on both sides, and returns how many went left.
func (b *treeBuilder) partition(s []int, feature int, threshold float64) int {
	right := b.scratch[:0]
	k := 0
	for _, i := range s {
		if b.x[i][feature] <= threshold {
			s[k] = i
			k++
		} else {
			right = append(right, i)
		}
	}
	copy(s[k:], right)
	return k
}

// bestSplit scans every feature for the threshold with the lowest summed
// squared error that leaves at least MinSamplesLeaf rows on each side.
func (b *treeBuilder) bestSplit(lo, hi int) (feature int, threshold float64, ok bool) {
	n := hi - lo
	minLeaf := max(b.params.MinSamplesLeaf, 1)
	best := math.Inf(1)

	var totalSum, totalSq float64
	for _, i := range b.rows[lo:hi] {
		totalSum += b.y[i]
		totalSq += b.y[i] * b.y[i]
	}

	for f, order := range b.order {
		sorted := order[lo:hi]
		var leftSum, leftSq float64
		for pos := 1; pos < n; pos++ {
			prev := sorted[pos-1]
			leftSum += b.y[prev]
			leftSq += b.y[prev] * b.y[prev]

			if pos < minLeaf || n-pos < minLeaf {
				continue
			}
			below, above := b.x[prev][f], b.x[sorted[pos]][f]
			if below == above {
				continue
			}
			nl, nr := float64(pos), float64(n-pos)
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			cost := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if cost < best-1e-12 {
				best = cost
				feature = f
				threshold = below + (above-below)/2
				if threshold >= above {
					threshold = below
				}
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (t *regressionTree) predict(row []float64) float64 {
	i := 0
	for {
		nd := t.nodes[i]
		if nd.feature < 0 {
			return nd.value
		}
		if row[nd.feature] <= nd.threshold {
			i = nd.left
		} else {
			i = nd.right
		}
	}
}
