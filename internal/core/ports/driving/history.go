package driving

import (
	"context"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// RunService exposes training run history.
type RunService interface {
	// List returns all runs, newest first.
	List(ctx context.Context) ([]domain.RunRecord, error)

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)
}

// ArtifactService manages persisted artifacts.
type ArtifactService interface {
	// List returns artifact metadata, newest first.
	List(ctx context.Context) ([]domain.ArtifactInfo, error)

	// Delete removes an artifact.
	Delete(ctx context.Context, id string) error
}
