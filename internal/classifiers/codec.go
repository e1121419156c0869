package classifiers

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// envelopeFormat is bumped whenever the envelope layout changes.
const envelopeFormat = 1

// envelope wraps a classifier's own state with its kind so Decode can
// dispatch without out-of-band information.
type envelope struct {
	Kind   domain.ModelKind `json:"kind"`
	Format int              `json:"format"`
	Params domain.Params    `json:"params,omitempty"`
	State  json.RawMessage  `json:"state"`
}

// Encode serialises a fitted classifier. The classifier must implement
// json.Marshaler for its fitted state.
func (r *Registry) Encode(c driven.Classifier) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil classifier", domain.ErrInvalidInput)
	}
	if !r.Has(c.Kind()) {
		return nil, fmt.Errorf("%w: classifier kind %q", domain.ErrUnsupportedType, c.Kind())
	}
	m, ok := c.(json.Marshaler)
	if !ok {
		return nil, fmt.Errorf("%w: %s classifier cannot be serialised", domain.ErrUnsupportedType, c.Kind())
	}
	state, err := m.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding %s state: %w", c.Kind(), err)
	}

	data, err := json.Marshal(envelope{
		Kind:   c.Kind(),
		Format: envelopeFormat,
		Params: c.Params(),
		State:  state,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", c.Kind(), err)
	}
	return data, nil
}

// Decode restores a classifier produced by Encode.
func (r *Registry) Decode(data []byte) (driven.Classifier, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: decoding classifier envelope: %w", domain.ErrArtifactCorrupt, err)
	}
	if env.Format != envelopeFormat {
		return nil, fmt.Errorf("%w: classifier format %d, want %d",
			domain.ErrArtifactCorrupt, env.Format, envelopeFormat)
	}
	e, ok := r.entries[env.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown classifier kind %q", domain.ErrArtifactCorrupt, env.Kind)
	}
	if len(env.State) == 0 {
		return nil, fmt.Errorf("%w: %s classifier has no state", domain.ErrArtifactCorrupt, env.Kind)
	}
	c, err := e.decode(env.State)
	if err != nil {
		return nil, err
	}
	return c, nil
}
