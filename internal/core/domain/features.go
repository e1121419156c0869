package domain

import "math"

// SparseVector is a feature vector holding only non-zero entries.
// Indices are strictly increasing.
type SparseVector struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// Len returns the number of stored (non-zero) entries.
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// IsZero returns true if the vector has no non-zero entries.
func (v SparseVector) IsZero() bool {
	for _, val := range v.Values {
		if val != 0 {
			return false
		}
	}
	return true
}

// Dot returns the inner product with a dense weight slice.
// Indices beyond the weight slice contribute nothing.
func (v SparseVector) Dot(weights []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		if idx < len(weights) {
			sum += v.Values[i] * weights[idx]
		}
	}
	return sum
}

// Norm returns the Euclidean norm.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, val := range v.Values {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// At returns the value at a feature index, or zero.
func (v SparseVector) At(index int) float64 {
	lo, hi := 0, len(v.Indices)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case v.Indices[mid] == index:
			return v.Values[mid]
		case v.Indices[mid] < index:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0
}

// FeatureMatrix is a row-major collection of sparse vectors sharing one
// feature space of width Cols.
type FeatureMatrix struct {
	Rows []SparseVector
	Cols int
}

// NumRows returns the number of samples.
func (m FeatureMatrix) NumRows() int {
	return len(m.Rows)
}

// Subset returns a matrix with the given rows, in order. Rows are shared, not copied.
func (m FeatureMatrix) Subset(rows []int) FeatureMatrix {
	out := FeatureMatrix{Rows: make([]SparseVector, len(rows)), Cols: m.Cols}
	for i, r := range rows {
		out.Rows[i] = m.Rows[r]
	}
	return out
}

// SubsetLabels picks labels by index, matching FeatureMatrix.Subset.
func SubsetLabels(labels []int, rows []int) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = labels[r]
	}
	return out
}
