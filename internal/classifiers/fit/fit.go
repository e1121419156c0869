// Package fit holds input checks and numeric helpers shared by the
// classifier implementations.
package fit

import (
	"fmt"
	"math"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// Check validates a training set: one label per row, labels in range,
// both classes present, and feature indices within the column count.
func Check(X domain.FeatureMatrix, y []int) error {
	if X.NumRows() == 0 {
		return fmt.Errorf("%w: no training rows", domain.ErrTraining)
	}
	if X.NumRows() != len(y) {
		return fmt.Errorf("%w: %d rows but %d labels", domain.ErrTraining, X.NumRows(), len(y))
	}
	if X.Cols <= 0 {
		return fmt.Errorf("%w: feature matrix has no columns", domain.ErrTraining)
	}
	for i, label := range y {
		if label < 0 || label >= domain.NumClasses {
			return fmt.Errorf("%w: label %d at row %d out of range", domain.ErrTraining, label, i)
		}
	}
	for k, n := range ClassCounts(y) {
		if n == 0 {
			return fmt.Errorf("%w: no rows of class %d", domain.ErrTraining, k)
		}
	}
	for i, row := range X.Rows {
		if len(row.Indices) != len(row.Values) {
			return fmt.Errorf("%w: row %d has mismatched indices and values", domain.ErrTraining, i)
		}
		for _, idx := range row.Indices {
			if idx < 0 || idx >= X.Cols {
				return fmt.Errorf("%w: row %d feature %d outside %d columns", domain.ErrTraining, i, idx, X.Cols)
			}
		}
	}
	return nil
}

// CheckPredict validates a matrix against the fitted feature count.
// Columns beyond the fitted count are ignored by the models, so only
// an unfitted model is an error.
func CheckPredict(fitted bool) error {
	if !fitted {
		return fmt.Errorf("%w: classifier is not fitted", domain.ErrInvalidInput)
	}
	return nil
}

// ClassCounts returns the number of rows per class.
func ClassCounts(y []int) [domain.NumClasses]int {
	var counts [domain.NumClasses]int
	for _, label := range y {
		counts[label]++
	}
	return counts
}

// Sign maps a class index to -1 (negative) or +1 (positive).
func Sign(label int) float64 {
	if label == 1 {
		return 1
	}
	return -1
}

// Sigmoid is the numerically stable logistic function.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// Log1pExp computes log(1+exp(z)) without overflow.
func Log1pExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

// Argmax returns the index of the larger probability; ties go to class 0.
func Argmax(p [domain.NumClasses]float64) int {
	if p[1] > p[0] {
		return 1
	}
	return 0
}
