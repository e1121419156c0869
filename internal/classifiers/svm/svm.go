// Package svm implements a linear support vector machine trained by dual
// coordinate descent on the hinge (L1) loss.
//
// The bias is handled as an extra constant feature, so it is regularised
// together with the weights. The model produces decision scores and labels
// only; it does not estimate probabilities.
package svm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"github.com/custodia-labs/critic/internal/classifiers/fit"
	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/logger"
)

// Ensure Classifier implements the interfaces.
var (
	_ driven.Classifier = (*Classifier)(nil)
	_ json.Marshaler    = (*Classifier)(nil)
)

// Default hyperparameters.
const (
	DefaultC       = 1.0
	DefaultMaxIter = 1000
	DefaultTol     = 1e-3
	DefaultSeed    = 42
)

// biasFeature is the value of the constant feature appended to every row.
const biasFeature = 1.0

// Classifier is a linear SVM.
type Classifier struct {
	c       float64
	maxIter int
	tol     float64
	seed    int64

	fitted  bool
	weights []float64
	bias    float64
	nIter   int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithC sets the box constraint on dual variables. Larger fits harder.
func WithC(c float64) Option {
	return func(cl *Classifier) {
		cl.c = c
	}
}

// WithMaxIter bounds the number of passes over the data.
func WithMaxIter(n int) Option {
	return func(cl *Classifier) {
		cl.maxIter = n
	}
}

// WithTol sets the projected-gradient stopping tolerance.
func WithTol(tol float64) Option {
	return func(cl *Classifier) {
		cl.tol = tol
	}
}

// WithSeed seeds the per-pass sample permutation.
func WithSeed(seed int64) Option {
	return func(cl *Classifier) {
		cl.seed = seed
	}
}

// New creates an unfitted classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		c:       DefaultC,
		maxIter: DefaultMaxIter,
		tol:     DefaultTol,
		seed:    DefaultSeed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns the classifier family.
func (c *Classifier) Kind() domain.ModelKind {
	return domain.ModelLinearSVM
}

// Params returns the effective hyperparameters.
func (c *Classifier) Params() domain.Params {
	return domain.Params{
		"C":        c.c,
		"max_iter": c.maxIter,
		"tol":      c.tol,
		"seed":     c.seed,
	}
}

// Iterations returns how many passes the last Fit ran.
func (c *Classifier) Iterations() int {
	return c.nIter
}

// Fit solves the dual problem
//
//	min_a 0.5 a'Qa - sum a_i   subject to 0 <= a_i <= C
//
// one coordinate at a time, maintaining w = sum a_i y_i x_i.
func (c *Classifier) Fit(ctx context.Context, X domain.FeatureMatrix, y []int) error {
	if err := fit.Check(X, y); err != nil {
		return err
	}
	if c.c <= 0 || math.IsNaN(c.c) || math.IsInf(c.c, 0) {
		return fmt.Errorf("%w: C must be positive, got %v", domain.ErrTraining, c.c)
	}
	if c.maxIter <= 0 {
		return fmt.Errorf("%w: max_iter must be positive, got %d", domain.ErrTraining, c.maxIter)
	}

	n, d := X.NumRows(), X.Cols
	w := make([]float64, d)
	var b float64
	alpha := make([]float64, n)
	signs := make([]float64, n)
	qDiag := make([]float64, n)
	for i, row := range X.Rows {
		signs[i] = fit.Sign(y[i])
		qDiag[i] = row.Norm()*row.Norm() + biasFeature*biasFeature
	}

	rng := rand.New(rand.NewSource(c.seed))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	iter := 0
	converged := false
	for iter < c.maxIter {
		if err := ctx.Err(); err != nil {
			return err
		}
		iter++

		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		pgMax, pgMin := math.Inf(-1), math.Inf(1)
		for _, i := range order {
			row := X.Rows[i]
			g := signs[i]*(row.Dot(w)+b*biasFeature) - 1

			var pg float64
			switch {
			case alpha[i] == 0:
				pg = math.Min(g, 0)
			case alpha[i] == c.c:
				pg = math.Max(g, 0)
			default:
				pg = g
			}
			pgMax = math.Max(pgMax, pg)
			pgMin = math.Min(pgMin, pg)

			if math.Abs(pg) < 1e-12 {
				continue
			}
			old := alpha[i]
			alpha[i] = math.Min(math.Max(old-g/qDiag[i], 0), c.c)
			delta := (alpha[i] - old) * signs[i]
			for k, idx := range row.Indices {
				w[idx] += delta * row.Values[k]
			}
			b += delta * biasFeature
		}

		if pgMax-pgMin <= c.tol {
			converged = true
			break
		}
	}

	if !converged {
		logger.Debug("svm: stopped after %d passes without converging (C=%v)", iter, c.c)
	}

	c.weights = w
	c.bias = b
	c.nIter = iter
	c.fitted = true
	return nil
}

// DecisionFunction returns the signed distance score w.x + b per row.
func (c *Classifier) DecisionFunction(X domain.FeatureMatrix) ([]float64, error) {
	if err := fit.CheckPredict(c.fitted); err != nil {
		return nil, err
	}
	out := make([]float64, X.NumRows())
	for i, row := range X.Rows {
		out[i] = row.Dot(c.weights) + c.bias*biasFeature
	}
	return out, nil
}

// Predict returns the positive class where the score is positive.
func (c *Classifier) Predict(X domain.FeatureMatrix) ([]int, error) {
	scores, err := c.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(scores))
	for i, s := range scores {
		if s > 0 {
			out[i] = 1
		}
	}
	return out, nil
}

type state struct {
	C       float64   `json:"C"`
	MaxIter int       `json:"max_iter"`
	Tol     float64   `json:"tol"`
	Seed    int64     `json:"seed"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// MarshalJSON encodes the fitted state.
func (c *Classifier) MarshalJSON() ([]byte, error) {
	if !c.fitted {
		return nil, fmt.Errorf("%w: cannot encode an unfitted classifier", domain.ErrInvalidInput)
	}
	return json.Marshal(state{
		C:       c.c,
		MaxIter: c.maxIter,
		Tol:     c.tol,
		Seed:    c.seed,
		Weights: c.weights,
		Bias:    c.bias,
	})
}

// Decode restores a classifier from MarshalJSON output.
func Decode(data []byte) (*Classifier, error) {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decoding svm: %w", domain.ErrArtifactCorrupt, err)
	}
	if len(s.Weights) == 0 {
		return nil, fmt.Errorf("%w: svm has no weights", domain.ErrArtifactCorrupt)
	}
	return &Classifier{
		c:       s.C,
		maxIter: s.MaxIter,
		tol:     s.Tol,
		seed:    s.Seed,
		fitted:  true,
		weights: s.Weights,
		bias:    s.Bias,
	}, nil
}
