package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// stubKind is the classifier kind served by stubFactory.
const stubKind domain.ModelKind = "stub"

// stubFactory builds stubModels. The "mode" param picks the behaviour:
//   - "linear": learns a per-feature class vote
//   - "constant": always predicts class 0
//   - "fail": Fit returns an error
//
// "proba": true makes the model probabilistic.
type stubFactory struct {
	fits atomic.Int64
}

var _ driven.ClassifierFactory = (*stubFactory)(nil)

func (f *stubFactory) Build(kind domain.ModelKind, params domain.Params) (driven.Classifier, error) {
	if kind != stubKind {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, kind)
	}
	m := &stubModel{params: params, fits: &f.fits}
	if params.Bool("proba", false) {
		return &stubProbaModel{stubModel: m}, nil
	}
	return m, nil
}

func (f *stubFactory) Encode(c driven.Classifier) ([]byte, error) {
	var m *stubModel
	switch v := c.(type) {
	case *stubModel:
		m = v
	case *stubProbaModel:
		m = v.stubModel
	default:
		return nil, domain.ErrUnsupportedType
	}
	return json.Marshal(stubState{Params: m.params, Votes: m.votes})
}

func (f *stubFactory) Decode(data []byte) (driven.Classifier, error) {
	var state stubState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrArtifactCorrupt, err)
	}
	c, err := f.Build(stubKind, state.Params)
	if err != nil {
		return nil, err
	}
	switch v := c.(type) {
	case *stubModel:
		v.votes, v.fitted = state.Votes, true
	case *stubProbaModel:
		v.votes, v.fitted = state.Votes, true
	}
	return c, nil
}

func (f *stubFactory) Kinds() []domain.ModelKind {
	return []domain.ModelKind{stubKind}
}

type stubState struct {
	Params domain.Params `json:"params"`
	Votes  []float64     `json:"votes"`
}

type stubModel struct {
	params domain.Params
	votes  []float64
	fitted bool
	fits   *atomic.Int64
}

func (m *stubModel) Kind() domain.ModelKind { return stubKind }

func (m *stubModel) Params() domain.Params { return m.params }

func (m *stubModel) Fit(ctx context.Context, X domain.FeatureMatrix, y []int) error {
	m.fits.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.params.String("mode", "linear") == "fail" {
		return errors.New("stub failure")
	}
	m.votes = make([]float64, X.Cols)
	for i, row := range X.Rows {
		sign := -1.0
		if y[i] == 1 {
			sign = 1
		}
		for k, idx := range row.Indices {
			m.votes[idx] += sign * row.Values[k]
		}
	}
	m.fitted = true
	return nil
}

func (m *stubModel) score(row domain.SparseVector) float64 {
	if len(m.votes) == 0 {
		return 0
	}
	return row.Dot(m.votes)
}

func (m *stubModel) Predict(X domain.FeatureMatrix) ([]int, error) {
	if !m.fitted {
		return nil, domain.ErrInvalidInput
	}
	out := make([]int, X.NumRows())
	if m.params.String("mode", "linear") == "constant" {
		return out, nil
	}
	for i, row := range X.Rows {
		if m.score(row) > 0 {
			out[i] = 1
		}
	}
	return out, nil
}

type stubProbaModel struct {
	*stubModel
}

func (m *stubProbaModel) PredictProba(X domain.FeatureMatrix) ([][domain.NumClasses]float64, error) {
	labels, err := m.Predict(X)
	if err != nil {
		return nil, err
	}
	out := make([][domain.NumClasses]float64, len(labels))
	for i, label := range labels {
		out[i][label] = 0.9
		out[i][1-label] = 0.1
	}
	return out, nil
}

// staticReader serves a fixed dataset for any path.
type staticReader struct {
	reviews []domain.Review
	err     error
}

func (r staticReader) Read(_ context.Context, _ string) ([]domain.Review, error) {
	return r.reviews, r.err
}

// recordingReports captures written reports.
type recordingReports struct {
	mu      sync.Mutex
	paths   []string
	reports []domain.Report
	err     error
}

func (r *recordingReports) Write(_ context.Context, path string, report domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.paths = append(r.paths, path)
	r.reports = append(r.reports, report)
	return nil
}

// versionedNormaliser wraps a normaliser with a different lexicon version.
type versionedNormaliser struct {
	driven.TextNormaliser
	version string
}

func (n versionedNormaliser) LexiconVersion() string { return n.version }

// movieReviews builds a separable dataset of n reviews per class.
func movieReviews(n int) []domain.Review {
	positive := []string{
		"A wonderful film with brilliant acting and a great story",
		"Loved every minute, excellent direction and superb cast",
		"Brilliant and moving, a great wonderful experience",
		"Superb performances, I loved the excellent soundtrack",
	}
	negative := []string{
		"A terrible film with awful acting and a boring story",
		"Hated every minute, dreadful direction and poor cast",
		"Awful and dull, a boring terrible experience",
		"Poor performances, I hated the dreadful soundtrack",
	}
	reviews := make([]domain.Review, 0, 2*n)
	for i := 0; i < n; i++ {
		reviews = append(reviews,
			domain.Review{Text: positive[i%len(positive)], Sentiment: domain.SentimentPositive},
			domain.Review{Text: negative[i%len(negative)], Sentiment: domain.SentimentNegative},
		)
	}
	return reviews
}
