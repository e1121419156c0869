package tfidf

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// Ensure Vocabulary implements the interface.
var _ driven.Vocabulary = (*Vocabulary)(nil)

// vocabularyFormat is bumped whenever the JSON layout changes.
const vocabularyFormat = 1

// Vocabulary is a frozen term index with IDF weights.
// Terms are sorted and a term's position is its feature index.
type Vocabulary struct {
	terms    []string
	index    map[string]int
	idf      []float64
	ngramMin int
	ngramMax int
}

func newVocabulary(terms []string, idf []float64, lo, hi int) *Vocabulary {
	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	return &Vocabulary{
		terms:    terms,
		index:    index,
		idf:      idf,
		ngramMin: lo,
		ngramMax: hi,
	}
}

// Size returns the number of terms.
func (v *Vocabulary) Size() int {
	return len(v.terms)
}

// Terms returns a copy of the terms in index order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Index returns the feature index of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// IDF returns the IDF weight of term, or 0 if the term is unknown.
func (v *Vocabulary) IDF(term string) float64 {
	if i, ok := v.index[term]; ok {
		return v.idf[i]
	}
	return 0
}

// NgramRange returns the n-gram lengths the vocabulary was fit with.
func (v *Vocabulary) NgramRange() (int, int) {
	return v.ngramMin, v.ngramMax
}

// Transform converts texts into L2-normalised TF-IDF rows.
func (v *Vocabulary) Transform(texts []string) domain.FeatureMatrix {
	m := domain.FeatureMatrix{
		Rows: make([]domain.SparseVector, len(texts)),
		Cols: len(v.terms),
	}
	for i, text := range texts {
		m.Rows[i] = v.TransformOne(text)
	}
	return m
}

// TransformOne converts a single text. Texts with no known terms
// yield an empty vector.
func (v *Vocabulary) TransformOne(text string) domain.SparseVector {
	counts := make(map[int]int)
	for _, term := range analyse(text, v.ngramMin, v.ngramMax) {
		if idx, ok := v.index[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return domain.SparseVector{}
	}

	vec := domain.SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var sumSq float64
	for _, idx := range vec.Indices {
		w := float64(counts[idx]) * v.idf[idx]
		vec.Values = append(vec.Values, w)
		sumSq += w * w
	}
	if norm := math.Sqrt(sumSq); norm > 0 {
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}

// vocabularyJSON is the persisted form.
type vocabularyJSON struct {
	Version    int       `json:"version"`
	NgramRange [2]int    `json:"ngram_range"`
	Terms      []string  `json:"terms"`
	IDF        []float64 `json:"idf"`
}

// Encode serialises the vocabulary as JSON.
func (v *Vocabulary) Encode() ([]byte, error) {
	data, err := json.Marshal(vocabularyJSON{
		Version:    vocabularyFormat,
		NgramRange: [2]int{v.ngramMin, v.ngramMax},
		Terms:      v.terms,
		IDF:        v.idf,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding vocabulary: %w", err)
	}
	return data, nil
}

// Decode parses and validates a vocabulary produced by Encode.
func Decode(data []byte) (*Vocabulary, error) {
	var raw vocabularyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding vocabulary: %w", domain.ErrArtifactCorrupt, err)
	}
	if raw.Version != vocabularyFormat {
		return nil, fmt.Errorf("%w: vocabulary format %d, want %d",
			domain.ErrArtifactCorrupt, raw.Version, vocabularyFormat)
	}
	if err := validateRange(raw.NgramRange[0], raw.NgramRange[1]); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrArtifactCorrupt, err)
	}
	if len(raw.Terms) != len(raw.IDF) {
		return nil, fmt.Errorf("%w: %d terms but %d idf weights",
			domain.ErrArtifactCorrupt, len(raw.Terms), len(raw.IDF))
	}
	for i, w := range raw.IDF {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return nil, fmt.Errorf("%w: invalid idf weight for %q", domain.ErrArtifactCorrupt, raw.Terms[i])
		}
		if i > 0 && raw.Terms[i-1] >= raw.Terms[i] {
			return nil, fmt.Errorf("%w: terms not sorted at %d", domain.ErrArtifactCorrupt, i)
		}
	}
	return newVocabulary(raw.Terms, raw.IDF, raw.NgramRange[0], raw.NgramRange[1]), nil
}
