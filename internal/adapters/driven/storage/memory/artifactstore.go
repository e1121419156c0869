package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is an in-memory implementation of driven.ArtifactStore.
type ArtifactStore struct {
	mu        sync.RWMutex
	artifacts map[string]storedArtifact
	seq       int
}

type storedArtifact struct {
	artifact domain.Artifact
	seq      int
}

// NewArtifactStore creates a new in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		artifacts: make(map[string]storedArtifact),
	}
}

// Save stores a copy of the artifact.
func (s *ArtifactStore) Save(_ context.Context, artifact *domain.Artifact) (domain.ArtifactInfo, error) {
	if artifact == nil || artifact.Info.ID == "" {
		return domain.ArtifactInfo{}, fmt.Errorf("%w: artifact ID is required", domain.ErrInvalidInput)
	}
	stored := cloneArtifact(artifact)
	stored.Seal()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.artifacts[stored.Info.ID] = storedArtifact{artifact: *stored, seq: s.seq}
	return stored.Info, nil
}

// Load retrieves an artifact by ID.
func (s *ArtifactStore) Load(_ context.Context, id string) (*domain.Artifact, error) {
	s.mu.RLock()
	stored, ok := s.artifacts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	artifact := cloneArtifact(&stored.artifact)
	if err := artifact.Verify(); err != nil {
		return nil, err
	}
	return artifact, nil
}

// Latest retrieves the most recently saved artifact.
func (s *ArtifactStore) Latest(ctx context.Context) (*domain.Artifact, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, domain.ErrNotFound
	}
	return s.Load(ctx, infos[0].ID)
}

// List returns artifact metadata, newest first.
func (s *ArtifactStore) List(_ context.Context) ([]domain.ArtifactInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := make([]storedArtifact, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		stored = append(stored, a)
	}
	sort.Slice(stored, func(i, j int) bool {
		ti, tj := stored[i].artifact.Info.CreatedAt, stored[j].artifact.Info.CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return stored[i].seq > stored[j].seq
	})
	infos := make([]domain.ArtifactInfo, len(stored))
	for i := range stored {
		infos[i] = stored[i].artifact.Info
	}
	return infos, nil
}

// Delete removes an artifact.
func (s *ArtifactStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.artifacts, id)
	return nil
}

// Corrupt overwrites the stored model blob without updating its checksum.
// Tests use it to exercise integrity checks.
func (s *ArtifactStore) Corrupt(id string, model []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.artifacts[id]; ok {
		stored.artifact.Model = append([]byte(nil), model...)
		s.artifacts[id] = stored
	}
}

func cloneArtifact(a *domain.Artifact) *domain.Artifact {
	return &domain.Artifact{
		Info:       a.Info,
		Model:      append([]byte(nil), a.Model...),
		Vocabulary: append([]byte(nil), a.Vocabulary...),
	}
}
