package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/core/ports/driving"
)

// Ensure the history services implement their interfaces.
var (
	_ driving.RunService      = (*RunService)(nil)
	_ driving.ArtifactService = (*ArtifactService)(nil)
)

// RunService reads training run history.
type RunService struct {
	store driven.RunStore
}

// NewRunService creates a new run service.
func NewRunService(store driven.RunStore) *RunService {
	return &RunService{store: store}
}

// List returns all runs, newest first.
func (s *RunService) List(ctx context.Context) ([]domain.RunRecord, error) {
	runs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Get retrieves a run by ID.
func (s *RunService) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.Get(ctx, id)
}

// ArtifactService manages persisted artifacts.
type ArtifactService struct {
	store     driven.ArtifactStore
	predictor *PredictionService
}

// NewArtifactService creates a new artifact service.
func NewArtifactService(store driven.ArtifactStore) *ArtifactService {
	return &ArtifactService{store: store}
}

// SetPredictionService links a predictor whose cache is dropped on delete.
func (s *ArtifactService) SetPredictionService(predictor *PredictionService) {
	s.predictor = predictor
}

// List returns artifact metadata, newest first.
func (s *ArtifactService) List(ctx context.Context) ([]domain.ArtifactInfo, error) {
	infos, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	return infos, nil
}

// Delete removes an artifact.
func (s *ArtifactService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.predictor != nil {
		s.predictor.Invalidate()
	}
	return nil
}
