// Package naivebayes implements a multinomial naive Bayes classifier
// with additive (Lidstone) smoothing.
package naivebayes

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/custodia-labs/critic/internal/classifiers/fit"
	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// Ensure Classifier implements the interfaces.
var (
	_ driven.ProbabilisticClassifier = (*Classifier)(nil)
	_ json.Marshaler                 = (*Classifier)(nil)
)

// DefaultAlpha is Laplace smoothing.
const DefaultAlpha = 1.0

// minAlpha keeps unseen features at a finite log probability.
const minAlpha = 1e-10

// Classifier is a multinomial naive Bayes model.
type Classifier struct {
	alpha    float64
	fitPrior bool

	fitted         bool
	nFeatures      int
	classLogPrior  [domain.NumClasses]float64
	featureLogProb [domain.NumClasses][]float64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithAlpha sets the additive smoothing parameter.
func WithAlpha(alpha float64) Option {
	return func(c *Classifier) {
		c.alpha = alpha
	}
}

// WithFitPrior toggles learning class priors. When off, priors are uniform.
func WithFitPrior(on bool) Option {
	return func(c *Classifier) {
		c.fitPrior = on
	}
}

// New creates an unfitted classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{alpha: DefaultAlpha, fitPrior: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns the classifier family.
func (c *Classifier) Kind() domain.ModelKind {
	return domain.ModelNaiveBayes
}

// Params returns the effective hyperparameters.
func (c *Classifier) Params() domain.Params {
	return domain.Params{"alpha": c.alpha, "fit_prior": c.fitPrior}
}

// Fit accumulates per-class feature mass and computes smoothed log probabilities.
func (c *Classifier) Fit(ctx context.Context, X domain.FeatureMatrix, y []int) error {
	if err := fit.Check(X, y); err != nil {
		return err
	}
	if c.alpha < 0 || math.IsNaN(c.alpha) {
		return fmt.Errorf("%w: alpha must be non-negative, got %v", domain.ErrTraining, c.alpha)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var featureCount [domain.NumClasses][]float64
	for k := range featureCount {
		featureCount[k] = make([]float64, X.Cols)
	}
	for i, row := range X.Rows {
		fc := featureCount[y[i]]
		for j, idx := range row.Indices {
			fc[idx] += row.Values[j]
		}
	}

	alpha := math.Max(c.alpha, minAlpha)
	counts := fit.ClassCounts(y)
	for k := 0; k < domain.NumClasses; k++ {
		if c.fitPrior {
			c.classLogPrior[k] = math.Log(float64(counts[k]) / float64(len(y)))
		} else {
			c.classLogPrior[k] = -math.Log(domain.NumClasses)
		}

		total := floats.Sum(featureCount[k]) + alpha*float64(X.Cols)
		logProb := make([]float64, X.Cols)
		for j, v := range featureCount[k] {
			logProb[j] = math.Log(v+alpha) - math.Log(total)
		}
		c.featureLogProb[k] = logProb
	}

	c.nFeatures = X.Cols
	c.fitted = true
	return nil
}

// jointLogLikelihood returns log P(c) + sum x_j log P(j|c) per class.
func (c *Classifier) jointLogLikelihood(row domain.SparseVector) [domain.NumClasses]float64 {
	var jll [domain.NumClasses]float64
	for k := 0; k < domain.NumClasses; k++ {
		jll[k] = c.classLogPrior[k] + row.Dot(c.featureLogProb[k])
	}
	return jll
}

// PredictProba returns normalised class probabilities.
func (c *Classifier) PredictProba(X domain.FeatureMatrix) ([][domain.NumClasses]float64, error) {
	if err := fit.CheckPredict(c.fitted); err != nil {
		return nil, err
	}
	out := make([][domain.NumClasses]float64, X.NumRows())
	for i, row := range X.Rows {
		jll := c.jointLogLikelihood(row)
		norm := floats.LogSumExp(jll[:])
		for k := range jll {
			out[i][k] = math.Exp(jll[k] - norm)
		}
	}
	return out, nil
}

// Predict returns the most likely class per row.
func (c *Classifier) Predict(X domain.FeatureMatrix) ([]int, error) {
	if err := fit.CheckPredict(c.fitted); err != nil {
		return nil, err
	}
	out := make([]int, X.NumRows())
	for i, row := range X.Rows {
		jll := c.jointLogLikelihood(row)
		if jll[1] > jll[0] {
			out[i] = 1
		}
	}
	return out, nil
}

type state struct {
	Alpha          float64                      `json:"alpha"`
	FitPrior       bool                         `json:"fit_prior"`
	NFeatures      int                          `json:"n_features"`
	ClassLogPrior  [domain.NumClasses]float64   `json:"class_log_prior"`
	FeatureLogProb [domain.NumClasses][]float64 `json:"feature_log_prob"`
}

// MarshalJSON encodes the fitted state.
func (c *Classifier) MarshalJSON() ([]byte, error) {
	if !c.fitted {
		return nil, fmt.Errorf("%w: cannot encode an unfitted classifier", domain.ErrInvalidInput)
	}
	return json.Marshal(state{
		Alpha:          c.alpha,
		FitPrior:       c.fitPrior,
		NFeatures:      c.nFeatures,
		ClassLogPrior:  c.classLogPrior,
		FeatureLogProb: c.featureLogProb,
	})
}

// Decode restores a classifier from MarshalJSON output.
func Decode(data []byte) (*Classifier, error) {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decoding naive bayes: %w", domain.ErrArtifactCorrupt, err)
	}
	for k := range s.FeatureLogProb {
		if len(s.FeatureLogProb[k]) != s.NFeatures || s.NFeatures == 0 {
			return nil, fmt.Errorf("%w: naive bayes feature table has %d entries, want %d",
				domain.ErrArtifactCorrupt, len(s.FeatureLogProb[k]), s.NFeatures)
		}
	}
	return &Classifier{
		alpha:          s.Alpha,
		fitPrior:       s.FitPrior,
		fitted:         true,
		nFeatures:      s.NFeatures,
		classLogPrior:  s.ClassLogPrior,
		featureLogProb: s.FeatureLogProb,
	}, nil
}
