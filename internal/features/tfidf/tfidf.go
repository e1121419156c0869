// Package tfidf implements a TF-IDF feature extractor over word n-grams.
//
// The weighting matches the common scikit-learn defaults: tokens are runs
// of two or more word characters, term frequency is the raw count, IDF is
// smoothed as ln((1+n)/(1+df))+1 and each row is L2-normalised.
package tfidf

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.FeatureExtractor = (*Extractor)(nil)

// Default extractor settings.
const (
	DefaultMaxFeatures = 10000
	DefaultNgramMin    = 1
	DefaultNgramMax    = 2
)

// ctxCheckInterval is how many documents are counted between
// cancellation checks during Fit.
const ctxCheckInterval = 1000

var tokenPattern = regexp.MustCompile(`[\pL\pN_]{2,}`)

// Extractor fits TF-IDF vocabularies.
type Extractor struct {
	maxFeatures int
	ngramMin    int
	ngramMax    int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxFeatures caps the vocabulary at the n most frequent terms.
// Zero or negative means no cap.
func WithMaxFeatures(n int) Option {
	return func(e *Extractor) {
		e.maxFeatures = n
	}
}

// WithNgramRange sets the smallest and largest n-gram length.
func WithNgramRange(lo, hi int) Option {
	return func(e *Extractor) {
		e.ngramMin = lo
		e.ngramMax = hi
	}
}

// New creates an extractor with default settings.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		maxFeatures: DefaultMaxFeatures,
		ngramMin:    DefaultNgramMin,
		ngramMax:    DefaultNgramMax,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromSettings creates an extractor from feature settings.
func NewFromSettings(s domain.FeatureSettings) *Extractor {
	return New(WithMaxFeatures(s.MaxFeatures), WithNgramRange(s.NgramMin, s.NgramMax))
}

// Fit learns the vocabulary and IDF weights from the training corpus.
func (e *Extractor) Fit(ctx context.Context, texts []string) (driven.Vocabulary, error) {
	if err := validateRange(e.ngramMin, e.ngramMax); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no documents to fit", domain.ErrInvalidInput)
	}

	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	seen := make(map[string]struct{})

	for i, text := range texts {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		clear(seen)
		for _, term := range analyse(text, e.ngramMin, e.ngramMax) {
			termFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	if len(termFreq) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary; documents contain only stopwords or short tokens",
			domain.ErrInvalidInput)
	}

	terms := selectTerms(termFreq, e.maxFeatures)

	n := float64(len(texts))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return newVocabulary(terms, idf, e.ngramMin, e.ngramMax), nil
}

// Decode restores a vocabulary from its JSON encoding.
func (e *Extractor) Decode(data []byte) (driven.Vocabulary, error) {
	return Decode(data)
}

// selectTerms keeps the top limit terms by corpus frequency, ties broken
// alphabetically, and returns them in alphabetical order.
func selectTerms(termFreq map[string]int, limit int) []string {
	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	if limit > 0 && len(terms) > limit {
		sort.SliceStable(terms, func(i, j int) bool {
			return termFreq[terms[i]] > termFreq[terms[j]]
		})
		terms = terms[:limit]
		sort.Strings(terms)
	}
	return terms
}

// analyse lowercases, tokenizes and emits n-grams of every length in [lo, hi].
func analyse(text string, lo, hi int) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil
	}
	if lo == 1 && hi == 1 {
		return tokens
	}

	out := make([]string, 0, len(tokens)*(hi-lo+1))
	for n := lo; n <= hi; n++ {
		if n == 1 {
			out = append(out, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func validateRange(lo, hi int) error {
	if lo < 1 || hi < lo {
		return fmt.Errorf("%w: ngram range (%d, %d)", domain.ErrInvalidInput, lo, hi)
	}
	return nil
}
