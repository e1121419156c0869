package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// mockPredictionService is a mock implementation of driving.PredictionService.
type mockPredictionService struct {
	err   error
	texts []string
	opts  []domain.PredictOptions
}

// Predict returns positive for texts containing "good", negative otherwise.
func (m *mockPredictionService) Predict(
	_ context.Context,
	text string,
	opts domain.PredictOptions,
) (domain.Prediction, error) {
	m.texts = append(m.texts, text)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return domain.Prediction{}, m.err
	}

	proba := [domain.NumClasses]float64{0.8, 0.2}
	if strings.Contains(text, "good") {
		proba = [domain.NumClasses]float64{0.1, 0.9}
	}
	p := domain.NewPrediction(proba)
	if strings.TrimSpace(text) == "" {
		p = domain.NewPrediction([domain.NumClasses]float64{0.4, 0.6})
		p.Fallback = true
	}
	p.ArtifactID = "artifact-1"
	if opts.ArtifactID != "" {
		p.ArtifactID = opts.ArtifactID
	}
	return p, nil
}

// mockRunService is a mock implementation of driving.RunService.
type mockRunService struct {
	runs []domain.RunRecord
	err  error
}

func (m *mockRunService) List(_ context.Context) ([]domain.RunRecord, error) {
	return m.runs, m.err
}

func (m *mockRunService) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockArtifactService is a mock implementation of driving.ArtifactService.
type mockArtifactService struct {
	infos []domain.ArtifactInfo
	err   error
}

func (m *mockArtifactService) List(_ context.Context) ([]domain.ArtifactInfo, error) {
	return m.infos, m.err
}

func (m *mockArtifactService) Delete(_ context.Context, _ string) error {
	return m.err
}
