package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluation_Perfect(t *testing.T) {
	y := []int{0, 1, 1, 0}
	eval, err := NewEvaluation(y, y)
	require.NoError(t, err)

	assert.Equal(t, 1.0, eval.Accuracy)
	assert.Equal(t, ConfusionMatrix{{2, 0}, {0, 2}}, eval.Confusion)
	for _, m := range eval.PerClass {
		assert.Equal(t, 1.0, m.Precision)
		assert.Equal(t, 1.0, m.Recall)
		assert.Equal(t, 1.0, m.F1)
		assert.Equal(t, 2, m.Support)
	}
}

func TestNewEvaluation_Mixed(t *testing.T) {
	actual := []int{0, 0, 0, 1, 1, 1, 1, 1}
	predicted := []int{0, 0, 1, 1, 1, 1, 0, 0}

	eval, err := NewEvaluation(actual, predicted)
	require.NoError(t, err)

	// Rows are actual, columns predicted
	assert.Equal(t, ConfusionMatrix{{2, 1}, {2, 3}}, eval.Confusion)
	assert.Equal(t, len(actual), eval.Confusion.Total())
	assert.InDelta(t, 5.0/8.0, eval.Accuracy, 1e-12)
	assert.InDelta(t,
		float64(eval.Confusion[0][0]+eval.Confusion[1][1])/float64(eval.Confusion.Total()),
		eval.Accuracy, 1e-12)

	neg := eval.PerClass[0]
	assert.InDelta(t, 2.0/4.0, neg.Precision, 1e-12)
	assert.InDelta(t, 2.0/3.0, neg.Recall, 1e-12)
	assert.Equal(t, 3, neg.Support)

	pos := eval.PerClass[1]
	assert.InDelta(t, 3.0/4.0, pos.Precision, 1e-12)
	assert.InDelta(t, 3.0/5.0, pos.Recall, 1e-12)
	assert.InDelta(t, 2*0.75*0.6/(0.75+0.6), pos.F1, 1e-12)

	assert.InDelta(t, (neg.F1+pos.F1)/2, eval.MacroAvg.F1, 1e-12)
	assert.InDelta(t, (neg.F1*3+pos.F1*5)/8, eval.WeightedAvg.F1, 1e-12)
	assert.Equal(t, 8, eval.WeightedAvg.Support)
}

func TestNewEvaluation_NeverPredictedClass(t *testing.T) {
	eval, err := NewEvaluation([]int{0, 1}, []int{0, 0})
	require.NoError(t, err)

	// Positive is never predicted: precision is zero rather than NaN
	assert.Equal(t, 0.0, eval.PerClass[1].Precision)
	assert.Equal(t, 0.0, eval.PerClass[1].F1)
}

func TestNewEvaluation_Empty(t *testing.T) {
	eval, err := NewEvaluation(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, eval.Accuracy)
	assert.Equal(t, 0, eval.Confusion.Total())
}

func TestNewEvaluation_Errors(t *testing.T) {
	_, err := NewEvaluation([]int{0, 1}, []int{0})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewEvaluation([]int{0, 2}, []int{0, 1})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
