package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/core/ports/driving"
	"github.com/custodia-labs/critic/internal/logger"
)

// Ensure PredictionService implements the interface.
var _ driving.PredictionService = (*PredictionService)(nil)

// PredictionService scores single texts with a persisted artifact.
// The most recently used artifact stays decoded in memory; it is safe
// for concurrent use.
type PredictionService struct {
	loader artifactLoader

	mu     sync.RWMutex
	cached *loadedModel
}

// NewPredictionService creates a new prediction service.
func NewPredictionService(
	store driven.ArtifactStore,
	factory driven.ClassifierFactory,
	extractor driven.FeatureExtractor,
	normaliser driven.TextNormaliser,
) *PredictionService {
	return &PredictionService{
		loader: artifactLoader{
			store:      store,
			factory:    factory,
			extractor:  extractor,
			normaliser: normaliser,
		},
	}
}

// Predict classifies text. Text with no known features gets the
// artifact's majority training class, flagged as a fallback.
func (s *PredictionService) Predict(
	ctx context.Context, text string, opts domain.PredictOptions,
) (domain.Prediction, error) {
	loaded, err := s.model(ctx, opts.ArtifactID)
	if err != nil {
		return domain.Prediction{}, err
	}

	proba, ok := loaded.model.(driven.ProbabilisticClassifier)
	if !ok {
		return domain.Prediction{}, fmt.Errorf("%w: %s", domain.ErrProbabilityUnsupported, loaded.info.Kind.Description())
	}

	cleaned := s.loader.normaliser.Normalise(text)
	X := loaded.vocab.Transform([]string{cleaned})

	var prediction domain.Prediction
	if X.Rows[0].IsZero() {
		logger.Debug("No known features in input; answering with class priors")
		// The argmax of the priors is the majority class.
		prediction = domain.NewPrediction(loaded.info.ClassPriors)
		prediction.Fallback = true
	} else {
		probs, err := proba.PredictProba(X)
		if err != nil {
			return domain.Prediction{}, fmt.Errorf("predicting: %w", err)
		}
		prediction = domain.NewPrediction(probs[0])
	}
	prediction.ArtifactID = loaded.info.ID
	return prediction, nil
}

// Invalidate drops the cached artifact so the next prediction reloads.
func (s *PredictionService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// model returns the decoded artifact for id, or the latest when id is empty.
func (s *PredictionService) model(ctx context.Context, id string) (*loadedModel, error) {
	id, err := s.loader.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil && cached.info.ID == id {
		return cached, nil
	}

	loaded, err := s.loader.load(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded artifact %s (%s)", id, loaded.info.ModelName)

	s.mu.Lock()
	s.cached = loaded
	s.mu.Unlock()
	return loaded, nil
}
