package domain

import "fmt"

// ConfusionMatrix cross-tabulates actual (rows) against predicted (columns)
// class counts, both in Classes() order.
type ConfusionMatrix [NumClasses][NumClasses]int

// Total returns the sum of all cells.
func (m ConfusionMatrix) Total() int {
	total := 0
	for i := range m {
		for j := range m[i] {
			total += m[i][j]
		}
	}
	return total
}

// Correct returns the sum of the diagonal.
func (m ConfusionMatrix) Correct() int {
	correct := 0
	for i := range m {
		correct += m[i][i]
	}
	return correct
}

// ClassMetrics holds precision, recall and F1 for one class.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation is the held-out scoring of a fitted model.
// It is derived once and never mutated.
type Evaluation struct {
	// Accuracy is correct / total, in [0, 1].
	Accuracy float64 `json:"accuracy"`

	// PerClass is indexed by class index (negative, positive).
	PerClass [NumClasses]ClassMetrics `json:"per_class"`

	// MacroAvg is the unweighted mean of the per-class metrics.
	MacroAvg ClassMetrics `json:"macro_avg"`

	// WeightedAvg weights per-class metrics by support.
	WeightedAvg ClassMetrics `json:"weighted_avg"`

	// Confusion is the 2x2 count matrix.
	Confusion ConfusionMatrix `json:"confusion"`
}

// NewEvaluation scores predictions against gold labels.
// Both slices hold class indices and must be the same length.
func NewEvaluation(actual, predicted []int) (Evaluation, error) {
	if len(actual) != len(predicted) {
		return Evaluation{}, fmt.Errorf("%w: %d labels but %d predictions",
			ErrInvalidInput, len(actual), len(predicted))
	}

	var eval Evaluation
	for i := range actual {
		a, p := actual[i], predicted[i]
		if a < 0 || a >= NumClasses || p < 0 || p >= NumClasses {
			return Evaluation{}, fmt.Errorf("%w: class index out of range at row %d", ErrInvalidInput, i)
		}
		eval.Confusion[a][p]++
	}

	total := eval.Confusion.Total()
	if total > 0 {
		eval.Accuracy = float64(eval.Confusion.Correct()) / float64(total)
	}

	for c := 0; c < NumClasses; c++ {
		tp := eval.Confusion[c][c]
		predictedC, actualC := 0, 0
		for k := 0; k < NumClasses; k++ {
			predictedC += eval.Confusion[k][c]
			actualC += eval.Confusion[c][k]
		}

		m := ClassMetrics{Support: actualC}
		m.Precision = safeDiv(float64(tp), float64(predictedC))
		m.Recall = safeDiv(float64(tp), float64(actualC))
		m.F1 = safeDiv(2*m.Precision*m.Recall, m.Precision+m.Recall)
		eval.PerClass[c] = m

		eval.MacroAvg.Precision += m.Precision / NumClasses
		eval.MacroAvg.Recall += m.Recall / NumClasses
		eval.MacroAvg.F1 += m.F1 / NumClasses

		if total > 0 {
			w := float64(actualC) / float64(total)
			eval.WeightedAvg.Precision += m.Precision * w
			eval.WeightedAvg.Recall += m.Recall * w
			eval.WeightedAvg.F1 += m.F1 * w
		}
	}
	eval.MacroAvg.Support = total
	eval.WeightedAvg.Support = total

	return eval, nil
}

// safeDiv returns zero when the denominator is zero, matching the
// zero_division=0 convention of common classification reports.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
