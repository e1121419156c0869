package driven

import (
	"context"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// RunStore persists training run history.
type RunStore interface {
	// Save stores or updates a run.
	Save(ctx context.Context, run domain.RunRecord) error

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns all runs, newest first.
	List(ctx context.Context) ([]domain.RunRecord, error)
}
