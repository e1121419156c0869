// Package domain defines the core business entities for critic.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Review: A labelled movie review from the input dataset
//   - SparseVector / FeatureMatrix: TF-IDF feature representations
//   - Evaluation / ConfusionMatrix: Held-out scoring of a fitted model
//   - ResultRegistry: Per-model results owned by the pipeline caller
//   - Artifact: A persisted classifier paired with its vocabulary
//   - Prediction: The answer for a single review text
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
