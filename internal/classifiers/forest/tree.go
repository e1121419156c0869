package forest

import (
	"math/rand"
	"sort"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// leafFeature marks a leaf node.
const leafFeature = -1

// node is one entry of a flattened decision tree. Samples with
// x[Feature] <= Threshold go Left.
type node struct {
	Feature   int                        `json:"f"`
	Threshold float64                    `json:"t,omitempty"`
	Left      int                        `json:"l,omitempty"`
	Right     int                        `json:"r,omitempty"`
	Value     [domain.NumClasses]float64 `json:"v"`
}

// tree is a CART classification tree stored as a flat node slice,
// root first.
type tree struct {
	Nodes []node `json:"nodes"`
}

// proba walks the tree and returns the class fractions of the reached leaf.
func (t *tree) proba(row domain.SparseVector) [domain.NumClasses]float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Feature == leafFeature {
			return n.Value
		}
		if row.At(n.Feature) <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// valid reports whether every child index points forward inside the slice,
// which guarantees proba terminates.
func (t *tree) valid() bool {
	if len(t.Nodes) == 0 {
		return false
	}
	for i, n := range t.Nodes {
		if n.Feature == leafFeature {
			continue
		}
		if n.Feature < 0 || n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return false
		}
	}
	return true
}

// treeBuilder grows one tree from a bootstrap sample.
type treeBuilder struct {
	X               domain.FeatureMatrix
	y               []int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	mtry            int
	rng             *rand.Rand

	features []int
	nodes    []node
	scratch  []sample
}

type sample struct {
	value float64
	label int
}

// build grows the tree over the given sample rows (duplicates allowed).
func (b *treeBuilder) build(rows []int) tree {
	b.features = make([]int, b.X.Cols)
	for j := range b.features {
		b.features[j] = j
	}
	b.nodes = b.nodes[:0]
	b.grow(rows, 0)
	return tree{Nodes: b.nodes}
}

// grow appends the subtree for rows and returns its root index.
func (b *treeBuilder) grow(rows []int, depth int) int {
	var counts [domain.NumClasses]int
	for _, r := range rows {
		counts[b.y[r]]++
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, node{Feature: leafFeature, Value: fractions(counts, len(rows))})

	pure := counts[0] == 0 || counts[1] == 0
	if pure || len(rows) < b.minSamplesSplit || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return idx
	}

	feature, threshold, ok := b.bestSplit(rows, counts)
	if !ok {
		return idx
	}

	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))
	for _, r := range rows {
		if b.X.Rows[r].At(feature) <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[idx].Feature = feature
	b.nodes[idx].Threshold = threshold
	b.nodes[idx].Left = l
	b.nodes[idx].Right = r
	return idx
}

// bestSplit samples mtry candidate features and returns the split with the
// largest Gini impurity decrease.
func (b *treeBuilder) bestSplit(rows []int, counts [domain.NumClasses]int) (int, float64, bool) {
	n := len(rows)
	parent := gini(counts, n)

	bestFeature, bestThreshold := -1, 0.0
	bestImpurity := parent - 1e-12

	d := len(b.features)
	for k := 0; k < b.mtry && k < d; k++ {
		// Partial Fisher-Yates: features[:k+1] is the sampled set.
		swap := k + b.rng.Intn(d-k)
		b.features[k], b.features[swap] = b.features[swap], b.features[k]
		j := b.features[k]

		samples := b.scratch[:0]
		for _, r := range rows {
			samples = append(samples, sample{value: b.X.Rows[r].At(j), label: b.y[r]})
		}
		b.scratch = samples
		sort.Slice(samples, func(a, c int) bool { return samples[a].value < samples[c].value })
		if samples[0].value == samples[n-1].value {
			continue
		}

		var leftCounts [domain.NumClasses]int
		for i := 0; i < n-1; i++ {
			leftCounts[samples[i].label]++
			if samples[i].value == samples[i+1].value {
				continue
			}
			nLeft := i + 1
			nRight := n - nLeft
			if nLeft < b.minSamplesLeaf || nRight < b.minSamplesLeaf {
				continue
			}
			rightCounts := [domain.NumClasses]int{counts[0] - leftCounts[0], counts[1] - leftCounts[1]}
			impurity := (float64(nLeft)*gini(leftCounts, nLeft) + float64(nRight)*gini(rightCounts, nRight)) / float64(n)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = j
				bestThreshold = (samples[i].value + samples[i+1].value) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func gini(counts [domain.NumClasses]int, n int) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}

func fractions(counts [domain.NumClasses]int, n int) [domain.NumClasses]float64 {
	var out [domain.NumClasses]float64
	if n == 0 {
		return out
	}
	for k, c := range counts {
		out[k] = float64(c) / float64(n)
	}
	return out
}
