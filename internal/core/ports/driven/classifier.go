package driven

import (
	"context"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// Classifier is a binary sentiment model over TF-IDF features.
// Labels are class indices in domain.Classes() order.
// A fitted classifier is read-only and safe for concurrent Predict calls.
type Classifier interface {
	// Kind returns the classifier family.
	Kind() domain.ModelKind

	// Params returns the effective hyperparameters.
	Params() domain.Params

	// Fit trains the classifier. It may be called once.
	Fit(ctx context.Context, X domain.FeatureMatrix, y []int) error

	// Predict returns a class index per row.
	Predict(X domain.FeatureMatrix) ([]int, error)
}

// ProbabilisticClassifier is a Classifier that can estimate class probabilities.
// Callers detect the capability with a type assertion.
type ProbabilisticClassifier interface {
	Classifier

	// PredictProba returns per-row probabilities in domain.Classes() order.
	// Each row sums to 1.
	PredictProba(X domain.FeatureMatrix) ([][domain.NumClasses]float64, error)
}

// ClassifierFactory creates classifiers and moves them to and from bytes.
type ClassifierFactory interface {
	// Build creates an unfitted classifier of the given kind.
	// Returns domain.ErrUnsupportedType for unknown kinds.
	Build(kind domain.ModelKind, params domain.Params) (Classifier, error)

	// Encode serialises a fitted classifier.
	Encode(c Classifier) ([]byte, error)

	// Decode restores a classifier produced by Encode.
	// Returns domain.ErrArtifactCorrupt if the data cannot be decoded.
	Decode(data []byte) (Classifier, error)

	// Kinds returns the registered classifier kinds.
	Kinds() []domain.ModelKind
}
