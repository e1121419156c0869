package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// loadedModel is a decoded artifact ready to score text.
type loadedModel struct {
	info  domain.ArtifactInfo
	model driven.Classifier
	vocab driven.Vocabulary
}

// artifactLoader resolves, verifies and decodes artifacts.
type artifactLoader struct {
	store      driven.ArtifactStore
	factory    driven.ClassifierFactory
	extractor  driven.FeatureExtractor
	normaliser driven.TextNormaliser
}

// resolveID returns id, or the newest artifact ID when id is empty.
func (l artifactLoader) resolveID(ctx context.Context, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	infos, err := l.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("listing artifacts: %w", err)
	}
	if len(infos) == 0 {
		return "", domain.ErrNotTrained
	}
	return infos[0].ID, nil
}

// load fetches and decodes the artifact with the given ID.
func (l artifactLoader) load(ctx context.Context, id string) (*loadedModel, error) {
	artifact, err := l.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading artifact %s: %w", id, err)
	}
	if err := artifact.Verify(); err != nil {
		return nil, err
	}
	if artifact.Info.LexiconVersion != l.normaliser.LexiconVersion() {
		return nil, fmt.Errorf("%w: artifact %s was cleaned with %q, normaliser uses %q",
			domain.ErrLexiconMismatch, id, artifact.Info.LexiconVersion, l.normaliser.LexiconVersion())
	}

	vocab, err := l.extractor.Decode(artifact.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("decoding vocabulary of %s: %w", id, err)
	}
	model, err := l.factory.Decode(artifact.Model)
	if err != nil {
		return nil, fmt.Errorf("decoding model of %s: %w", id, err)
	}
	return &loadedModel{info: artifact.Info, model: model, vocab: vocab}, nil
}
