package driven

import (
	"context"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// FeatureExtractor learns a vocabulary from cleaned texts.
type FeatureExtractor interface {
	// Fit builds a frozen vocabulary from the training corpus.
	Fit(ctx context.Context, texts []string) (Vocabulary, error)

	// Decode restores a vocabulary produced by Vocabulary.Encode.
	// Returns domain.ErrArtifactCorrupt if the data cannot be decoded.
	Decode(data []byte) (Vocabulary, error)
}

// Vocabulary maps terms to feature indices and IDF weights.
// It is immutable after Fit and safe for concurrent use.
type Vocabulary interface {
	// Size returns the number of terms.
	Size() int

	// Transform converts cleaned texts into L2-normalised TF-IDF rows.
	// Terms outside the vocabulary are ignored.
	Transform(texts []string) domain.FeatureMatrix

	// Encode serialises the vocabulary.
	Encode() ([]byte, error)
}
