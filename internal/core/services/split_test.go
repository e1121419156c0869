package services

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/critic/internal/core/domain"
)

func TestSplitIndices_Sizes(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		testSize  float64
		wantTrain int
		wantTest  int
	}{
		{name: "even", n: 10, testSize: 0.2, wantTrain: 8, wantTest: 2},
		{name: "rounds test size up", n: 5, testSize: 0.3, wantTrain: 3, wantTest: 2},
		{name: "imdb scale", n: 50000, testSize: 0.2, wantTrain: 40000, wantTest: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			train, test, err := SplitIndices(tt.n, tt.testSize, 42)
			require.NoError(t, err)
			assert.Len(t, train, tt.wantTrain)
			assert.Len(t, test, tt.wantTest)

			all := append(append([]int(nil), train...), test...)
			sort.Ints(all)
			for i, v := range all {
				require.Equal(t, i, v, "every row appears exactly once")
			}
		})
	}
}

func TestSplitIndices_Deterministic(t *testing.T) {
	train1, test1, err := SplitIndices(100, 0.2, 42)
	require.NoError(t, err)
	train2, test2, err := SplitIndices(100, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)

	_, test3, err := SplitIndices(100, 0.2, 7)
	require.NoError(t, err)
	assert.NotEqual(t, test1, test3)
}

func TestSplitIndices_Errors(t *testing.T) {
	_, _, err := SplitIndices(0, 0.2, 42)
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)

	for _, size := range []float64{0, 1, -0.1, 1.5} {
		_, _, err = SplitIndices(10, size, 42)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "test size %v", size)
	}

	_, _, err = SplitIndices(1, 0.5, 42)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStratifiedFolds(t *testing.T) {
	tests := []struct {
		name string
		y    []int
		k    int
		want [][]int
	}{
		{
			name: "grouped classes",
			y:    []int{0, 0, 0, 1, 1, 1},
			k:    3,
			want: [][]int{{0, 3}, {1, 4}, {2, 5}},
		},
		{
			name: "interleaved classes",
			y:    []int{1, 0, 1, 0, 1, 0, 1, 0},
			k:    2,
			want: [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}},
		},
		{
			name: "uneven classes",
			y:    []int{0, 0, 0, 0, 0, 1, 1, 1},
			k:    3,
			want: [][]int{{0, 1, 5}, {2, 3, 6}, {4, 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folds, err := StratifiedFolds(tt.y, tt.k)
			require.NoError(t, err)
			assert.Equal(t, tt.want, folds)
		})
	}
}

func TestStratifiedFolds_PreservesBalance(t *testing.T) {
	y := make([]int, 300)
	for i := range y {
		if i%3 == 0 {
			y[i] = 1
		}
	}

	folds, err := StratifiedFolds(y, 3)
	require.NoError(t, err)
	for _, fold := range folds {
		positives := 0
		for _, i := range fold {
			positives += y[i]
		}
		assert.Len(t, fold, 100)
		assert.InDelta(t, 33, positives, 1)
	}
}

func TestStratifiedFolds_Errors(t *testing.T) {
	_, err := StratifiedFolds([]int{0, 1, 0, 1}, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = StratifiedFolds([]int{0, 1}, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = StratifiedFolds([]int{0, 0, 0, 1}, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "minority class smaller than fold count")

	_, err = StratifiedFolds([]int{0, 2, 0, 1}, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComplement(t *testing.T) {
	assert.Equal(t, []int{0, 2, 4}, complement(5, []int{1, 3}))
	assert.Equal(t, []int{0, 1, 2}, complement(3, nil))
	assert.Empty(t, complement(2, []int{0, 1}))
}
