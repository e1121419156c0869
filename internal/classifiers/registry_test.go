package classifiers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// stubClassifier is a minimal classifier without serialisable state.
type stubClassifier struct{}

func (s *stubClassifier) Kind() domain.ModelKind { return "stub" }
func (s *stubClassifier) Params() domain.Params  { return nil }
func (s *stubClassifier) Fit(_ context.Context, _ domain.FeatureMatrix, _ []int) error {
	return nil
}
func (s *stubClassifier) Predict(X domain.FeatureMatrix) ([]int, error) {
	return make([]int, X.NumRows()), nil
}

func stubBuilder(_ domain.Params) (driven.Classifier, error) { return &stubClassifier{}, nil }
func stubDecoder(_ []byte) (driven.Classifier, error)        { return &stubClassifier{}, nil }

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.Kinds())
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", stubBuilder, stubDecoder)

	assert.True(t, r.Has("stub"))
	assert.False(t, r.Has("other"))

	c, err := r.Build("stub", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ModelKind("stub"), c.Kind())
}

func TestRegistry_Build_Unknown(t *testing.T) {
	_, err := NewRegistry().Build("perceptron", nil)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
}

func TestRegisterDefaults(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, []domain.ModelKind{
		domain.ModelLinearSVM,
		domain.ModelLogistic,
		domain.ModelNaiveBayes,
		domain.ModelRandomForest,
	}, r.Kinds())

	for _, spec := range domain.DefaultModelSpecs() {
		c, err := r.Build(spec.Kind, spec.Params)
		require.NoError(t, err, spec.Name)
		assert.Equal(t, spec.Kind, c.Kind())
	}
}

func TestBuild_ParamsApplied(t *testing.T) {
	r := NewDefaultRegistry()

	// TOML integers arrive as int64
	c, err := r.Build(domain.ModelLogistic, domain.Params{"C": int64(10), "penalty": "l1", "solver": "liblinear"})
	require.NoError(t, err)
	assert.Equal(t, 10.0, c.Params().Float("C", 0))
	assert.Equal(t, "l1", c.Params().String("penalty", ""))

	c, err = r.Build(domain.ModelRandomForest, domain.Params{"n_estimators": 7, "seed": int64(1)})
	require.NoError(t, err)
	assert.Equal(t, 7, c.Params().Int("n_estimators", 0))
}

func TestBuild_UnknownParam(t *testing.T) {
	r := NewDefaultRegistry()
	_, err := r.Build(domain.ModelNaiveBayes, domain.Params{"alhpa": 1.0})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "alhpa")
}

func TestProbabilityCapability(t *testing.T) {
	r := NewDefaultRegistry()
	want := map[domain.ModelKind]bool{
		domain.ModelLogistic:     true,
		domain.ModelNaiveBayes:   true,
		domain.ModelLinearSVM:    false,
		domain.ModelRandomForest: true,
	}
	for kind, proba := range want {
		c, err := r.Build(kind, nil)
		require.NoError(t, err)
		_, ok := c.(driven.ProbabilisticClassifier)
		assert.Equal(t, proba, ok, kind)
	}
}

func trainingData() (domain.FeatureMatrix, []int) {
	var rows []domain.SparseVector
	var y []int
	for i := 0; i < 8; i++ {
		rows = append(rows,
			domain.SparseVector{Indices: []int{0, 2}, Values: []float64{0.8, 0.6}},
			domain.SparseVector{Indices: []int{1, 2}, Values: []float64{0.8, 0.6}},
		)
		y = append(y, 1, 0)
	}
	return domain.FeatureMatrix{Rows: rows, Cols: 3}, y
}

func TestEncodeDecode_AllKinds(t *testing.T) {
	r := NewDefaultRegistry()
	X, y := trainingData()

	for _, spec := range domain.DefaultModelSpecs() {
		t.Run(string(spec.Kind), func(t *testing.T) {
			params := spec.Params
			if spec.Kind == domain.ModelRandomForest {
				params = params.Merge(domain.Params{"n_estimators": 5})
			}
			c, err := r.Build(spec.Kind, params)
			require.NoError(t, err)
			require.NoError(t, c.Fit(context.Background(), X, y))

			data, err := r.Encode(c)
			require.NoError(t, err)

			restored, err := r.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, c.Kind(), restored.Kind())

			want, err := c.Predict(X)
			require.NoError(t, err)
			got, err := restored.Predict(X)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			if p, ok := c.(driven.ProbabilisticClassifier); ok {
				rp, ok := restored.(driven.ProbabilisticClassifier)
				require.True(t, ok)
				wantProba, _ := p.PredictProba(X)
				gotProba, err := rp.PredictProba(X)
				require.NoError(t, err)
				assert.Equal(t, wantProba, gotProba)
			}
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Encode(nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = r.Encode(&stubClassifier{})
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))

	r.Register("stub", stubBuilder, stubDecoder)
	_, err = r.Encode(&stubClassifier{})
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))

	unfitted, _ := r.Build(domain.ModelNaiveBayes, nil)
	_, err = r.Encode(unfitted)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestDecode_Corrupt(t *testing.T) {
	r := NewDefaultRegistry()
	tests := []struct {
		name string
		data string
	}{
		{"not json", "garbage"},
		{"wrong format", `{"kind":"naive_bayes","format":2,"state":{}}`},
		{"unknown kind", `{"kind":"perceptron","format":1,"state":{}}`},
		{"missing state", `{"kind":"naive_bayes","format":1}`},
		{"bad state", `{"kind":"logistic","format":1,"state":{"weights":[]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Decode([]byte(tt.data))
			assert.True(t, errors.Is(err, domain.ErrArtifactCorrupt))
		})
	}
}
