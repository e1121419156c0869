// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DatasetReader: Reads labelled reviews from a CSV file
//   - TextNormaliser: Cleans review text (lowercase, letters only, stopwords, lemmas)
//   - FeatureExtractor: Fits a TF-IDF vocabulary and decodes persisted ones
//   - Vocabulary: A frozen term index that turns texts into feature vectors
//   - ClassifierFactory: Builds, encodes and decodes classifiers by kind
//   - ArtifactStore: Persists the classifier and vocabulary pair
//   - RunStore: Persists training run history
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ReportWriter: Markdown training report. Without it, no report is written.
//   - FileWatcher: Dataset change notifications for `train --watch`.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, classifier, or normaliser package
package driven
