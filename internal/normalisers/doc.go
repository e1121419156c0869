// Package normalisers provides implementations of the TextNormaliser
// interface. Each normaliser turns raw review text into the cleaned,
// space-joined token string the feature extractor consumes.
//
// Normalisers are constructed by the composition root with an injected
// lexicon and never hold global state.
package normalisers
