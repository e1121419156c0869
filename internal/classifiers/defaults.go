package classifiers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/critic/internal/classifiers/forest"
	"github.com/custodia-labs/critic/internal/classifiers/logistic"
	"github.com/custodia-labs/critic/internal/classifiers/naivebayes"
	"github.com/custodia-labs/critic/internal/classifiers/svm"
	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// RegisterDefaults registers the four built-in classifier families.
func RegisterDefaults(r *Registry) {
	r.Register(domain.ModelLogistic, buildLogistic, func(b []byte) (driven.Classifier, error) {
		return logistic.Decode(b)
	})
	r.Register(domain.ModelNaiveBayes, buildNaiveBayes, func(b []byte) (driven.Classifier, error) {
		return naivebayes.Decode(b)
	})
	r.Register(domain.ModelLinearSVM, buildSVM, func(b []byte) (driven.Classifier, error) {
		return svm.Decode(b)
	})
	r.Register(domain.ModelRandomForest, buildForest, func(b []byte) (driven.Classifier, error) {
		return forest.Decode(b)
	})
}

// NewDefaultRegistry returns a registry with all built-in families.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// buildLogistic supports: C (float), penalty ("l1"|"l2"),
// solver ("liblinear"), max_iter (int), tol (float).
func buildLogistic(p domain.Params) (driven.Classifier, error) {
	if err := checkKeys(p, "C", "penalty", "solver", "max_iter", "tol"); err != nil {
		return nil, err
	}
	return logistic.New(
		logistic.WithC(p.Float("C", logistic.DefaultC)),
		logistic.WithPenalty(p.String("penalty", logistic.PenaltyL2)),
		logistic.WithSolver(p.String("solver", logistic.SolverLiblinear)),
		logistic.WithMaxIter(p.Int("max_iter", logistic.DefaultMaxIter)),
		logistic.WithTol(p.Float("tol", logistic.DefaultTol)),
	), nil
}

// buildNaiveBayes supports: alpha (float), fit_prior (bool).
func buildNaiveBayes(p domain.Params) (driven.Classifier, error) {
	if err := checkKeys(p, "alpha", "fit_prior"); err != nil {
		return nil, err
	}
	return naivebayes.New(
		naivebayes.WithAlpha(p.Float("alpha", naivebayes.DefaultAlpha)),
		naivebayes.WithFitPrior(p.Bool("fit_prior", true)),
	), nil
}

// buildSVM supports: C (float), max_iter (int), tol (float), seed (int).
func buildSVM(p domain.Params) (driven.Classifier, error) {
	if err := checkKeys(p, "C", "max_iter", "tol", "seed"); err != nil {
		return nil, err
	}
	return svm.New(
		svm.WithC(p.Float("C", svm.DefaultC)),
		svm.WithMaxIter(p.Int("max_iter", svm.DefaultMaxIter)),
		svm.WithTol(p.Float("tol", svm.DefaultTol)),
		svm.WithSeed(int64(p.Int("seed", svm.DefaultSeed))),
	), nil
}

// buildForest supports: n_estimators, max_depth, min_samples_split,
// min_samples_leaf (int), max_features ("sqrt"|"log2"|"all"),
// bootstrap (bool), seed (int).
func buildForest(p domain.Params) (driven.Classifier, error) {
	if err := checkKeys(p, "n_estimators", "max_depth", "min_samples_split",
		"min_samples_leaf", "max_features", "bootstrap", "seed"); err != nil {
		return nil, err
	}
	return forest.New(
		forest.WithEstimators(p.Int("n_estimators", forest.DefaultEstimators)),
		forest.WithMaxDepth(p.Int("max_depth", 0)),
		forest.WithMinSamplesSplit(p.Int("min_samples_split", forest.DefaultMinSamplesSplit)),
		forest.WithMinSamplesLeaf(p.Int("min_samples_leaf", forest.DefaultMinSamplesLeaf)),
		forest.WithMaxFeatures(p.String("max_features", forest.MaxFeaturesSqrt)),
		forest.WithBootstrap(p.Bool("bootstrap", true)),
		forest.WithSeed(int64(p.Int("seed", forest.DefaultSeed))),
	), nil
}

// checkKeys rejects params the family does not understand.
func checkKeys(p domain.Params, known ...string) error {
	allowed := make(map[string]struct{}, len(known))
	for _, k := range known {
		allowed[k] = struct{}{}
	}
	var unknown []string
	for k := range p {
		if _, ok := allowed[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: unknown parameters %s", domain.ErrInvalidInput, strings.Join(unknown, ", "))
}
