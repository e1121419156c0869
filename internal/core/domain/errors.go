package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	// Missing dataset columns and unrecognised labels wrap this error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown classifier kind or storage backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrTraining indicates a classifier could not be fit or could not predict.
	// It is recorded per model and never aborts the whole comparison.
	ErrTraining = errors.New("training failed")

	// ErrEmptyDataset indicates there are not enough reviews to split or fit.
	ErrEmptyDataset = errors.New("dataset has too few reviews")

	// Store Errors.

	// ErrArtifactCorrupt indicates a persisted artifact exists but cannot be decoded
	// or fails its checksum.
	ErrArtifactCorrupt = errors.New("artifact corrupt")

	// Usage Errors.

	// ErrNotTrained indicates a prediction was requested before any model was saved.
	ErrNotTrained = errors.New("no trained model available; run `critic train` first")

	// ErrProbabilityUnsupported indicates the classifier cannot estimate class probabilities.
	ErrProbabilityUnsupported = errors.New("classifier does not support probability estimates")
)

// ErrLexiconMismatch indicates an artifact was trained with different linguistic
// resources than the normaliser now in use.
var ErrLexiconMismatch = errors.New("lexicon version mismatch")
