package driving

import (
	"context"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// PredictionService classifies single texts with a persisted model.
type PredictionService interface {
	// Predict returns the sentiment of text.
	// Returns domain.ErrNotTrained if no artifact exists.
	Predict(ctx context.Context, text string, opts domain.PredictOptions) (domain.Prediction, error)
}
