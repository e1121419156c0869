package domain

import (
	"fmt"
	"time"
)

// ModelResult is one entry of a ResultRegistry.
type ModelResult struct {
	// Name is the registry key.
	Name string `json:"name"`

	// Kind is the classifier family.
	Kind ModelKind `json:"kind"`

	// Params are the effective hyperparameters.
	Params Params `json:"params,omitempty"`

	// Evaluation is the held-out score. Zero when Err is set.
	Evaluation Evaluation `json:"evaluation"`

	// Err is set when fitting or evaluation failed.
	Err error `json:"-"`

	// Error mirrors Err for serialisation.
	Error string `json:"error,omitempty"`

	// SupportsProba reports whether the fitted model can estimate probabilities.
	SupportsProba bool `json:"supports_proba"`

	// Duration is the wall time spent fitting and evaluating.
	Duration time.Duration `json:"duration"`
}

// Failed returns true if the entry records a failure.
func (r ModelResult) Failed() bool {
	return r.Err != nil || r.Error != ""
}

// ResultRegistry collects model results in insertion order.
// It is owned by the pipeline caller and passed explicitly between stages.
type ResultRegistry struct {
	order   []string
	results map[string]ModelResult
}

// NewResultRegistry creates an empty registry.
func NewResultRegistry() *ResultRegistry {
	return &ResultRegistry{
		results: make(map[string]ModelResult),
	}
}

// Add records a result. Names are unique; a second entry for the same
// name is rejected rather than overwriting the first.
func (r *ResultRegistry) Add(result ModelResult) error {
	if result.Name == "" {
		return fmt.Errorf("%w: result name is empty", ErrInvalidInput)
	}
	if _, exists := r.results[result.Name]; exists {
		return fmt.Errorf("%w: result %q", ErrAlreadyExists, result.Name)
	}
	if result.Err != nil && result.Error == "" {
		result.Error = result.Err.Error()
	}
	r.order = append(r.order, result.Name)
	r.results[result.Name] = result
	return nil
}

// Get returns the result for a name.
func (r *ResultRegistry) Get(name string) (ModelResult, bool) {
	result, ok := r.results[name]
	return result, ok
}

// Len returns the number of recorded results.
func (r *ResultRegistry) Len() int {
	return len(r.order)
}

// All returns every result in insertion order.
func (r *ResultRegistry) All() []ModelResult {
	out := make([]ModelResult, len(r.order))
	for i, name := range r.order {
		out[i] = r.results[name]
	}
	return out
}

// Best returns the successful result with the highest accuracy that
// satisfies accept (nil accepts all). Ties go to the earliest entry.
func (r *ResultRegistry) Best(accept func(ModelResult) bool) (ModelResult, bool) {
	var best ModelResult
	found := false
	for _, name := range r.order {
		result := r.results[name]
		if result.Failed() {
			continue
		}
		if accept != nil && !accept(result) {
			continue
		}
		if !found || result.Evaluation.Accuracy > best.Evaluation.Accuracy {
			best = result
			found = true
		}
	}
	return best, found
}
