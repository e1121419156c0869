package driving

import (
	"context"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// TrainingService runs the training pipeline.
type TrainingService interface {
	// Train loads the dataset, fits and evaluates every configured model,
	// optionally tunes, persists the best probabilistic model and records the run.
	Train(ctx context.Context, opts domain.TrainOptions) (*domain.RunRecord, error)

	// Evaluate scores a persisted artifact against a labelled dataset.
	// An empty artifactID uses the latest artifact.
	Evaluate(ctx context.Context, datasetPath, artifactID string) (*domain.Evaluation, error)
}
