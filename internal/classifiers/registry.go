// Package classifiers wires the classifier implementations behind the
// driven.ClassifierFactory port. Each family registers a builder, which
// constructs an unfitted model from generic params, and a decoder, which
// restores a fitted model from its encoded state.
package classifiers

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ClassifierFactory = (*Registry)(nil)

// BuilderFunc creates an unfitted classifier from generic params.
// Params come from code defaults, config (TOML numbers arrive as int64 or
// float64) or a tuning grid.
type BuilderFunc func(params domain.Params) (driven.Classifier, error)

// DecoderFunc restores a fitted classifier from its encoded state.
type DecoderFunc func(state []byte) (driven.Classifier, error)

type entry struct {
	build  BuilderFunc
	decode DecoderFunc
}

// Registry maps classifier kinds to their builders and decoders.
type Registry struct {
	entries map[domain.ModelKind]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[domain.ModelKind]entry),
	}
}

// Register adds a classifier family. A later registration replaces an earlier one.
func (r *Registry) Register(kind domain.ModelKind, build BuilderFunc, decode DecoderFunc) {
	r.entries[kind] = entry{build: build, decode: decode}
}

// Has returns true if the kind is registered.
func (r *Registry) Has(kind domain.ModelKind) bool {
	_, ok := r.entries[kind]
	return ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []domain.ModelKind {
	kinds := make([]domain.ModelKind, 0, len(r.entries))
	for kind := range r.entries {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Build creates an unfitted classifier.
func (r *Registry) Build(kind domain.ModelKind, params domain.Params) (driven.Classifier, error) {
	e, ok := r.entries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: classifier kind %q", domain.ErrUnsupportedType, kind)
	}
	if params == nil {
		params = domain.Params{}
	}
	c, err := e.build(params)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", kind, err)
	}
	return c, nil
}
