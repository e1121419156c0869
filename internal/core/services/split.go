package services

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// SplitIndices shuffles 0..n-1 with a seeded generator and returns the
// train and test row indices. The test split takes ceil(testSize*n) rows
// from the front of the permutation, so the same seed always yields the
// same partition.
func SplitIndices(n int, testSize float64, seed int64) (train, test []int, err error) {
	if n == 0 {
		return nil, nil, domain.ErrEmptyDataset
	}
	if testSize <= 0 || testSize >= 1 || math.IsNaN(testSize) {
		return nil, nil, fmt.Errorf("%w: test size %v must be in (0, 1)", domain.ErrInvalidInput, testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		return nil, nil, fmt.Errorf("%w: %d reviews leave no training rows at test size %v",
			domain.ErrInvalidInput, n, testSize)
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible split, not security
	perm := rng.Perm(n)

	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	return train, test, nil
}

// StratifiedFolds partitions samples into k folds that preserve the class
// balance of y. Samples are not shuffled: within each class, the first
// samples go to fold 0, the next to fold 1 and so on. The per-class fold
// sizes come from dealing the sorted labels round-robin across folds.
// Each returned slice holds the test indices of one fold, ascending.
func StratifiedFolds(y []int, k int) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", domain.ErrInvalidInput, k)
	}
	if len(y) < k {
		return nil, fmt.Errorf("%w: %d samples cannot fill %d folds", domain.ErrInvalidInput, len(y), k)
	}

	var counts [domain.NumClasses]int
	for i, label := range y {
		if label < 0 || label >= domain.NumClasses {
			return nil, fmt.Errorf("%w: label %d at row %d", domain.ErrInvalidInput, label, i)
		}
		counts[label]++
	}
	for class, count := range counts {
		if count < k {
			return nil, fmt.Errorf("%w: class %d has %d samples, fewer than %d folds",
				domain.ErrInvalidInput, class, count, k)
		}
	}

	// Deal the sorted labels round-robin: sample j of the sorted order
	// lands in fold j%k.
	allocation := make([][domain.NumClasses]int, k)
	pos := 0
	for class, count := range counts {
		for i := 0; i < count; i++ {
			allocation[pos%k][class]++
			pos++
		}
	}

	// Hand each class's samples out in order according to the allocation.
	foldOf := make([]int, len(y))
	var seen [domain.NumClasses]int
	for i, label := range y {
		n := seen[label]
		fold := 0
		for fold < k-1 && n >= allocation[fold][label] {
			n -= allocation[fold][label]
			fold++
		}
		foldOf[i] = fold
		seen[label]++
	}

	folds := make([][]int, k)
	for i, fold := range foldOf {
		folds[fold] = append(folds[fold], i)
	}
	return folds, nil
}

// complement returns the indices in 0..n-1 that are not in rows.
// rows must be ascending.
func complement(n int, rows []int) []int {
	out := make([]int, 0, n-len(rows))
	next := 0
	for i := 0; i < n; i++ {
		if next < len(rows) && rows[next] == i {
			next++
			continue
		}
		out = append(out, i)
	}
	return out
}
