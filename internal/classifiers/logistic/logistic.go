// Package logistic implements binary logistic regression with l1 or l2
// regularisation, fit by accelerated proximal gradient descent (FISTA).
//
// The objective follows the liblinear formulation:
//
//	min_w  R(w) + C * sum_i log(1 + exp(-y_i (w.x_i + b)))
//
// where R is 0.5*||w||^2 for l2 and ||w||_1 for l1. The intercept b is
// not regularised.
package logistic

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/custodia-labs/critic/internal/classifiers/fit"
	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/logger"
)

// Ensure Classifier implements the interfaces.
var (
	_ driven.ProbabilisticClassifier = (*Classifier)(nil)
	_ json.Marshaler                 = (*Classifier)(nil)
)

// Penalty names.
const (
	PenaltyL1 = "l1"
	PenaltyL2 = "l2"
)

// SolverLiblinear is the only accepted solver name. It selects the
// liblinear objective; the optimisation itself is FISTA.
const SolverLiblinear = "liblinear"

// Default hyperparameters.
const (
	DefaultC       = 1.0
	DefaultMaxIter = 100
	DefaultTol     = 1e-4
)

const (
	powerIterations = 30
	lipschitzMargin = 1.05
	ctxCheckEvery   = 10
)

// Classifier is a logistic regression model.
type Classifier struct {
	c       float64
	penalty string
	solver  string
	maxIter int
	tol     float64

	fitted    bool
	weights   []float64
	intercept float64
	nIter     int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithC sets the inverse regularisation strength. Larger is weaker.
func WithC(c float64) Option {
	return func(cl *Classifier) {
		cl.c = c
	}
}

// WithPenalty selects l1 or l2 regularisation.
func WithPenalty(p string) Option {
	return func(cl *Classifier) {
		cl.penalty = p
	}
}

// WithSolver sets the solver name.
func WithSolver(s string) Option {
	return func(cl *Classifier) {
		cl.solver = s
	}
}

// WithMaxIter bounds the number of gradient iterations.
func WithMaxIter(n int) Option {
	return func(cl *Classifier) {
		cl.maxIter = n
	}
}

// WithTol sets the convergence tolerance on the largest coefficient change.
func WithTol(tol float64) Option {
	return func(cl *Classifier) {
		cl.tol = tol
	}
}

// New creates an unfitted classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		c:       DefaultC,
		penalty: PenaltyL2,
		solver:  SolverLiblinear,
		maxIter: DefaultMaxIter,
		tol:     DefaultTol,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns the classifier family.
func (c *Classifier) Kind() domain.ModelKind {
	return domain.ModelLogistic
}

// Params returns the effective hyperparameters.
func (c *Classifier) Params() domain.Params {
	return domain.Params{
		"C":        c.c,
		"penalty":  c.penalty,
		"solver":   c.solver,
		"max_iter": c.maxIter,
		"tol":      c.tol,
	}
}

// Weights returns a copy of the fitted coefficients.
func (c *Classifier) Weights() []float64 {
	out := make([]float64, len(c.weights))
	copy(out, c.weights)
	return out
}

// Intercept returns the fitted bias.
func (c *Classifier) Intercept() float64 {
	return c.intercept
}

// Iterations returns how many iterations the last Fit ran.
func (c *Classifier) Iterations() int {
	return c.nIter
}

func (c *Classifier) validate() error {
	if c.c <= 0 || math.IsNaN(c.c) || math.IsInf(c.c, 0) {
		return fmt.Errorf("%w: C must be positive, got %v", domain.ErrTraining, c.c)
	}
	if c.penalty != PenaltyL1 && c.penalty != PenaltyL2 {
		return fmt.Errorf("%w: unknown penalty %q", domain.ErrTraining, c.penalty)
	}
	if c.solver != SolverLiblinear {
		return fmt.Errorf("%w: unsupported solver %q", domain.ErrTraining, c.solver)
	}
	if c.maxIter <= 0 {
		return fmt.Errorf("%w: max_iter must be positive, got %d", domain.ErrTraining, c.maxIter)
	}
	return nil
}

// Fit minimises the regularised log loss.
func (c *Classifier) Fit(ctx context.Context, X domain.FeatureMatrix, y []int) error {
	if err := fit.Check(X, y); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	n, d := X.NumRows(), X.Cols
	signs := make([]float64, n)
	for i, label := range y {
		signs[i] = fit.Sign(label)
	}

	lipschitz := c.c * 0.25 * spectralNormSq(X) * lipschitzMargin
	if c.penalty == PenaltyL2 {
		lipschitz++
	}
	if lipschitz <= 0 {
		lipschitz = 1
	}
	step := 1 / lipschitz

	w := make([]float64, d+1) // last slot is the intercept
	wPrev := make([]float64, d+1)
	yk := make([]float64, d+1)
	grad := make([]float64, d+1)
	residual := make([]float64, n)
	t := 1.0

	iter := 0
	converged := false
	for iter < c.maxIter {
		if iter%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		iter++

		c.gradient(X, signs, yk, residual, grad)

		copy(wPrev, w)
		for j := 0; j < d; j++ {
			w[j] = yk[j] - step*grad[j]
			if c.penalty == PenaltyL1 {
				w[j] = softThreshold(w[j], step)
			}
		}
		w[d] = yk[d] - step*grad[d]

		// Gradient-based restart: drop momentum when it points uphill.
		var restart, maxDelta, maxAbs float64
		for j := range w {
			delta := w[j] - wPrev[j]
			restart += (yk[j] - w[j]) * delta
			maxDelta = math.Max(maxDelta, math.Abs(delta))
			maxAbs = math.Max(maxAbs, math.Abs(w[j]))
		}

		if maxDelta <= c.tol*math.Max(1, maxAbs) {
			converged = true
			break
		}

		if restart > 0 {
			t = 1
			copy(yk, w)
			continue
		}
		tNext := (1 + math.Sqrt(1+4*t*t)) / 2
		// yk = w + momentum*(w - wPrev)
		floats.SubTo(yk, w, wPrev)
		floats.Scale((t-1)/tNext, yk)
		floats.Add(yk, w)
		t = tNext
	}

	if !converged {
		logger.Debug("logistic: stopped after %d iterations without converging (C=%v, penalty=%s)",
			iter, c.c, c.penalty)
	}

	c.weights = w[:d]
	c.intercept = w[d]
	c.nIter = iter
	c.fitted = true
	return nil
}

// gradient writes the gradient of the smooth part of the objective at
// params into grad. For l2 the penalty is smooth and included.
func (c *Classifier) gradient(X domain.FeatureMatrix, signs, params, residual, grad []float64) {
	d := X.Cols
	weights, bias := params[:d], params[d]

	for i, row := range X.Rows {
		margin := signs[i] * (row.Dot(weights) + bias)
		residual[i] = -c.c * signs[i] * fit.Sigmoid(-margin)
	}

	clear(grad)
	for i, row := range X.Rows {
		r := residual[i]
		for k, idx := range row.Indices {
			grad[idx] += r * row.Values[k]
		}
		grad[d] += r
	}
	if c.penalty == PenaltyL2 {
		floats.Add(grad[:d], weights)
	}
}

// Objective returns the regularised loss of the fitted model on (X, y).
func (c *Classifier) Objective(X domain.FeatureMatrix, y []int) float64 {
	var loss float64
	for i, row := range X.Rows {
		margin := fit.Sign(y[i]) * (row.Dot(c.weights) + c.intercept)
		loss += fit.Log1pExp(-margin)
	}
	loss *= c.c

	if c.penalty == PenaltyL1 {
		return loss + floats.Norm(c.weights, 1)
	}
	return loss + 0.5*floats.Dot(c.weights, c.weights)
}

// spectralNormSq estimates the largest eigenvalue of AᵀA, where A is X
// with an appended column of ones, by power iteration from a fixed start.
func spectralNormSq(X domain.FeatureMatrix) float64 {
	d := X.Cols
	v := make([]float64, d+1)
	floats.AddConst(1/math.Sqrt(float64(d+1)), v)
	u := make([]float64, X.NumRows())
	next := make([]float64, d+1)

	var lambda float64
	for it := 0; it < powerIterations; it++ {
		for i, row := range X.Rows {
			u[i] = row.Dot(v[:d]) + v[d]
		}
		clear(next)
		for i, row := range X.Rows {
			for k, idx := range row.Indices {
				next[idx] += u[i] * row.Values[k]
			}
			next[d] += u[i]
		}

		norm := floats.Norm(next, 2)
		if norm == 0 {
			return 0
		}
		lambda = norm
		floats.ScaleTo(v, 1/norm, next)
	}
	return lambda
}

func softThreshold(x, threshold float64) float64 {
	switch {
	case x > threshold:
		return x - threshold
	case x < -threshold:
		return x + threshold
	default:
		return 0
	}
}

// DecisionFunction returns w.x + b per row.
func (c *Classifier) DecisionFunction(X domain.FeatureMatrix) ([]float64, error) {
	if err := fit.CheckPredict(c.fitted); err != nil {
		return nil, err
	}
	out := make([]float64, X.NumRows())
	for i, row := range X.Rows {
		out[i] = row.Dot(c.weights) + c.intercept
	}
	return out, nil
}

// PredictProba returns [P(negative), P(positive)] per row.
func (c *Classifier) PredictProba(X domain.FeatureMatrix) ([][domain.NumClasses]float64, error) {
	scores, err := c.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	out := make([][domain.NumClasses]float64, len(scores))
	for i, z := range scores {
		p := fit.Sigmoid(z)
		out[i] = [domain.NumClasses]float64{1 - p, p}
	}
	return out, nil
}

// Predict returns the positive class where the decision function is positive.
func (c *Classifier) Predict(X domain.FeatureMatrix) ([]int, error) {
	scores, err := c.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(scores))
	for i, z := range scores {
		if z > 0 {
			out[i] = 1
		}
	}
	return out, nil
}

type state struct {
	C         float64   `json:"C"`
	Penalty   string    `json:"penalty"`
	Solver    string    `json:"solver"`
	MaxIter   int       `json:"max_iter"`
	Tol       float64   `json:"tol"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// MarshalJSON encodes the fitted state.
func (c *Classifier) MarshalJSON() ([]byte, error) {
	if !c.fitted {
		return nil, fmt.Errorf("%w: cannot encode an unfitted classifier", domain.ErrInvalidInput)
	}
	return json.Marshal(state{
		C:         c.c,
		Penalty:   c.penalty,
		Solver:    c.solver,
		MaxIter:   c.maxIter,
		Tol:       c.tol,
		Weights:   c.weights,
		Intercept: c.intercept,
	})
}

// Decode restores a classifier from MarshalJSON output.
func Decode(data []byte) (*Classifier, error) {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decoding logistic regression: %w", domain.ErrArtifactCorrupt, err)
	}
	if len(s.Weights) == 0 {
		return nil, fmt.Errorf("%w: logistic regression has no weights", domain.ErrArtifactCorrupt)
	}
	return &Classifier{
		c:         s.C,
		penalty:   s.Penalty,
		solver:    s.Solver,
		maxIter:   s.MaxIter,
		tol:       s.Tol,
		fitted:    true,
		weights:   s.Weights,
		intercept: s.Intercept,
	}, nil
}
