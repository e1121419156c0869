// Package forest implements a random forest of CART classification trees
// grown on bootstrap samples with Gini impurity.
package forest

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
	_ driven.ProbabilisticClassifier = (*Classifier)(nil)
	_ json.Marshaler                 = (*Classifier)(nil)
)

// Feature sampling strategies.
const (
	MaxFeaturesSqrt = "sqrt"
	MaxFeaturesLog2 = "log2"
	MaxFeaturesAll  = "all"
)

// Default hyperparameters.
const (
	DefaultEstimators      = 100
	DefaultMinSamplesSplit = 2
	DefaultMinSamplesLeaf  = 1
	DefaultSeed            = 42
)

// Classifier is a random forest.
type Classifier struct {
	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     string
	bootstrap       bool
	seed            int64

	fitted    bool
	nFeatures int
	trees     []tree
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithEstimators sets the number of trees.
func WithEstimators(n int) Option {
	return func(c *Classifier) {
		c.nEstimators = n
	}
}

// WithMaxDepth limits tree depth. Zero means unlimited.
func WithMaxDepth(depth int) Option {
	return func(c *Classifier) {
		c.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the smallest node that may be split.
func WithMinSamplesSplit(n int) Option {
	return func(c *Classifier) {
		c.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the smallest allowed leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(c *Classifier) {
		c.minSamplesLeaf = n
	}
}

// WithMaxFeatures selects how many features are tried per split:
// "sqrt", "log2", "all".
func WithMaxFeatures(strategy string) Option {
	return func(c *Classifier) {
		c.maxFeatures = strategy
	}
}

// WithBootstrap toggles sampling rows with replacement per tree.
func WithBootstrap(on bool) Option {
	return func(c *Classifier) {
		c.bootstrap = on
	}
}

// WithSeed seeds bootstrap sampling and feature sampling.
func WithSeed(seed int64) Option {
	return func(c *Classifier) {
		c.seed = seed
	}
}

// New creates an unfitted classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		nEstimators:     DefaultEstimators,
		minSamplesSplit: DefaultMinSamplesSplit,
		minSamplesLeaf:  DefaultMinSamplesLeaf,
		maxFeatures:     MaxFeaturesSqrt,
		bootstrap:       true,
		seed:            DefaultSeed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns the classifier family.
func (c *Classifier) Kind() domain.ModelKind {
	return domain.ModelRandomForest
}

// Params returns the effective hyperparameters.
func (c *Classifier) Params() domain.Params {
	return domain.Params{
		"n_estimators":      c.nEstimators,
		"max_depth":         c.maxDepth,
		"min_samples_split": c.minSamplesSplit,
		"min_samples_leaf":  c.minSamplesLeaf,
		"max_features":      c.maxFeatures,
		"bootstrap":         c.bootstrap,
		"seed":              c.seed,
	}
}

// Trees returns the number of fitted trees.
func (c *Classifier) Trees() int {
	return len(c.trees)
}

func (c *Classifier) mtry(d int) (int, error) {
	var m int
	switch c.maxFeatures {
	case MaxFeaturesSqrt:
		m = int(math.Sqrt(float64(d)))
	case MaxFeaturesLog2:
		m = int(math.Log2(float64(d)))
	case MaxFeaturesAll:
		m = d
	default:
		return 0, fmt.Errorf("%w: unknown max_features %q", domain.ErrTraining, c.maxFeatures)
	}
	if m < 1 {
		m = 1
	}
	return m, nil
}

// Fit grows nEstimators trees, each on its own bootstrap sample and seed.
func (c *Classifier) Fit(ctx context.Context, X domain.FeatureMatrix, y []int) error {
	if err := fit.Check(X, y); err != nil {
		return err
	}
	if c.nEstimators <= 0 {
		return fmt.Errorf("%w: n_estimators must be positive, got %d", domain.ErrTraining, c.nEstimators)
	}
	if c.minSamplesSplit < 2 || c.minSamplesLeaf < 1 || c.maxDepth < 0 {
		return fmt.Errorf("%w: invalid tree limits (max_depth=%d, min_samples_split=%d, min_samples_leaf=%d)",
			domain.ErrTraining, c.maxDepth, c.minSamplesSplit, c.minSamplesLeaf)
	}
	mtry, err := c.mtry(X.Cols)
	if err != nil {
		return err
	}

	n := X.NumRows()
	master := rand.New(rand.NewSource(c.seed))
	trees := make([]tree, 0, c.nEstimators)
	rows := make([]int, n)

	for t := 0; t < c.nEstimators; t++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rng := rand.New(rand.NewSource(master.Int63()))

		for i := range rows {
			if c.bootstrap {
				rows[i] = rng.Intn(n)
			} else {
				rows[i] = i
			}
		}

		b := &treeBuilder{
			X:               X,
			y:               y,
			maxDepth:        c.maxDepth,
			minSamplesSplit: c.minSamplesSplit,
			minSamplesLeaf:  c.minSamplesLeaf,
			mtry:            mtry,
			rng:             rng,
			scratch:         make([]sample, 0, n),
		}
		trees = append(trees, b.build(rows))
		logger.Debug("forest: tree %d/%d has %d nodes", t+1, c.nEstimators, len(trees[t].Nodes))
	}

	c.trees = trees
	c.nFeatures = X.Cols
	c.fitted = true
	return nil
}

// PredictProba averages the leaf class fractions over all trees.
func (c *Classifier) PredictProba(X domain.FeatureMatrix) ([][domain.NumClasses]float64, error) {
	if err := fit.CheckPredict(c.fitted); err != nil {
		return nil, err
	}
	out := make([][domain.NumClasses]float64, X.NumRows())
	scale := 1 / float64(len(c.trees))
	for i, row := range X.Rows {
		var sum [domain.NumClasses]float64
		for t := range c.trees {
			p := c.trees[t].proba(row)
			sum[0] += p[0]
			sum[1] += p[1]
		}
		out[i] = [domain.NumClasses]float64{sum[0] * scale, sum[1] * scale}
	}
	return out, nil
}

// Predict returns the class with the higher mean probability.
func (c *Classifier) Predict(X domain.FeatureMatrix) ([]int, error) {
	proba, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(proba))
	for i, p := range proba {
		out[i] = fit.Argmax(p)
	}
	return out, nil
}

type state struct {
	NEstimators     int    `json:"n_estimators"`
	MaxDepth        int    `json:"max_depth"`
	MinSamplesSplit int    `json:"min_samples_split"`
	MinSamplesLeaf  int    `json:"min_samples_leaf"`
	MaxFeatures     string `json:"max_features"`
	Bootstrap       bool   `json:"bootstrap"`
	Seed            int64  `json:"seed"`
	NFeatures       int    `json:"n_features"`
	Trees           []tree `json:"trees"`
}

// MarshalJSON encodes the fitted state.
func (c *Classifier) MarshalJSON() ([]byte, error) {
	if !c.fitted {
		return nil, fmt.Errorf("%w: cannot encode an unfitted classifier", domain.ErrInvalidInput)
	}
	return json.Marshal(state{
		NEstimators:     c.nEstimators,
		MaxDepth:        c.maxDepth,
		MinSamplesSplit: c.minSamplesSplit,
		MinSamplesLeaf:  c.minSamplesLeaf,
		MaxFeatures:     c.maxFeatures,
		Bootstrap:       c.bootstrap,
		Seed:            c.seed,
		NFeatures:       c.nFeatures,
		Trees:           c.trees,
	})
}

// Decode restores a classifier from MarshalJSON output.
func Decode(data []byte) (*Classifier, error) {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decoding random forest: %w", domain.ErrArtifactCorrupt, err)
	}
	if len(s.Trees) == 0 {
		return nil, fmt.Errorf("%w: random forest has no trees", domain.ErrArtifactCorrupt)
	}
	for i := range s.Trees {
		if !s.Trees[i].valid() {
			return nil, fmt.Errorf("%w: random forest tree %d is malformed", domain.ErrArtifactCorrupt, i)
		}
	}
	return &Classifier{
		nEstimators:     s.NEstimators,
		maxDepth:        s.MaxDepth,
		minSamplesSplit: s.MinSamplesSplit,
		minSamplesLeaf:  s.MinSamplesLeaf,
		maxFeatures:     s.MaxFeatures,
		bootstrap:       s.Bootstrap,
		seed:            s.Seed,
		fitted:          true,
		nFeatures:       s.NFeatures,
		trees:           s.Trees,
	}, nil
}
