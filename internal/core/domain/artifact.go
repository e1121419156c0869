package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ArtifactInfo describes a persisted artifact pair without its payload.
type ArtifactInfo struct {
	// ID is the unique identifier (a UUID).
	ID string `json:"id"`

	// RunID links to the training run that produced the artifact.
	RunID string `json:"run_id,omitempty"`

	// ModelName is the registry name of the persisted model.
	ModelName string `json:"model_name"`

	// Kind is the classifier family.
	Kind ModelKind `json:"kind"`

	// Accuracy is the held-out accuracy at training time.
	Accuracy float64 `json:"accuracy"`

	// ClassPriors are the training-split class frequencies, used as the
	// prediction for texts with no known features.
	ClassPriors [NumClasses]float64 `json:"class_priors"`

	// VocabularySize is the number of features.
	VocabularySize int `json:"vocabulary_size"`

	// LexiconVersion identifies the stopword/lemma resources used for cleaning.
	LexiconVersion string `json:"lexicon_version"`

	// ModelChecksum is the hex SHA-256 of the model blob.
	ModelChecksum string `json:"model_checksum"`

	// VocabularyChecksum is the hex SHA-256 of the vocabulary blob.
	VocabularyChecksum string `json:"vocabulary_checksum"`

	// CreatedAt is when the artifact was saved.
	CreatedAt time.Time `json:"created_at"`
}

// MajorityClass returns the class with the larger prior, ties favouring negative.
func (a ArtifactInfo) MajorityClass() Sentiment {
	if a.ClassPriors[1] > a.ClassPriors[0] {
		return SentimentPositive
	}
	return SentimentNegative
}

// Artifact is a fitted classifier paired with the vocabulary it was
// trained on. The two blobs are only meaningful together.
type Artifact struct {
	Info       ArtifactInfo
	Model      []byte
	Vocabulary []byte
}

// Seal fills in the blob checksums.
func (a *Artifact) Seal() {
	a.Info.ModelChecksum = Checksum(a.Model)
	a.Info.VocabularyChecksum = Checksum(a.Vocabulary)
}

// Verify checks that both blobs are present and match their checksums.
func (a *Artifact) Verify() error {
	if len(a.Model) == 0 || len(a.Vocabulary) == 0 {
		return fmt.Errorf("%w: artifact %s has an empty blob", ErrArtifactCorrupt, a.Info.ID)
	}
	if a.Info.ModelChecksum != "" && Checksum(a.Model) != a.Info.ModelChecksum {
		return fmt.Errorf("%w: artifact %s model checksum mismatch", ErrArtifactCorrupt, a.Info.ID)
	}
	if a.Info.VocabularyChecksum != "" && Checksum(a.Vocabulary) != a.Info.VocabularyChecksum {
		return fmt.Errorf("%w: artifact %s vocabulary checksum mismatch", ErrArtifactCorrupt, a.Info.ID)
	}
	return nil
}

// Checksum returns the hex SHA-256 digest of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
