package driven

import (
	"context"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// ArtifactStore persists trained classifier and vocabulary pairs.
// Both blobs of an artifact are written together or not at all.
type ArtifactStore interface {
	// Save stores an artifact. The artifact must have an ID.
	// The returned info carries the blob checksums.
	Save(ctx context.Context, artifact *domain.Artifact) (domain.ArtifactInfo, error)

	// Load retrieves an artifact by ID.
	// Returns domain.ErrNotFound or domain.ErrArtifactCorrupt.
	Load(ctx context.Context, id string) (*domain.Artifact, error)

	// Latest retrieves the most recently saved artifact.
	// Returns domain.ErrNotFound if the store is empty.
	Latest(ctx context.Context) (*domain.Artifact, error)

	// List returns artifact metadata, newest first.
	List(ctx context.Context) ([]domain.ArtifactInfo, error)

	// Delete removes an artifact.
	Delete(ctx context.Context, id string) error
}
