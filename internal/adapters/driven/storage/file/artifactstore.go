package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// File names inside an artifact directory.
const (
	ManifestFile   = "manifest.json"
	ModelFile      = "model.json"
	VocabularyFile = "vocabulary.json"
)

// stagingPrefix marks directories that are still being written.
const stagingPrefix = ".staging-"

// ArtifactStore stores artifacts as directories of JSON files.
type ArtifactStore struct {
	root string
}

var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// NewArtifactStore creates a store rooted at dir, creating it if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}
	return &ArtifactStore{root: dir}, nil
}

// Root returns the store directory.
func (s *ArtifactStore) Root() string {
	return s.root
}

// Save writes the artifact to a staging directory and renames it into place.
// An existing artifact with the same ID is replaced.
func (s *ArtifactStore) Save(ctx context.Context, artifact *domain.Artifact) (domain.ArtifactInfo, error) {
	if artifact == nil || artifact.Info.ID == "" {
		return domain.ArtifactInfo{}, fmt.Errorf("%w: artifact requires an ID", domain.ErrInvalidInput)
	}
	if err := validID(artifact.Info.ID); err != nil {
		return domain.ArtifactInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ArtifactInfo{}, err
	}

	artifact.Seal()
	if artifact.Info.CreatedAt.IsZero() {
		artifact.Info.CreatedAt = time.Now().UTC()
	}
	info := artifact.Info

	manifest, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("marshalling manifest: %w", err)
	}

	staging, err := os.MkdirTemp(s.root, stagingPrefix+info.ID+"-")
	if err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging) //nolint:errcheck // gone after a successful rename

	files := map[string][]byte{
		ModelFile:      artifact.Model,
		VocabularyFile: artifact.Vocabulary,
		ManifestFile:   manifest,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(staging, name), data, 0600); err != nil {
			return domain.ArtifactInfo{}, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	target := s.dir(info.ID)
	if err := os.RemoveAll(target); err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("replacing artifact: %w", err)
	}
	if err := os.Rename(staging, target); err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("committing artifact: %w", err)
	}
	return info, nil
}

// Load reads an artifact and verifies its checksums.
func (s *ArtifactStore) Load(ctx context.Context, id string) (*domain.Artifact, error) {
	if err := validID(id); err != nil {
		return nil, domain.ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.readManifest(id)
	if err != nil {
		return nil, err
	}

	artifact := &domain.Artifact{Info: info}
	if artifact.Model, err = s.readBlob(id, ModelFile); err != nil {
		return nil, err
	}
	if artifact.Vocabulary, err = s.readBlob(id, VocabularyFile); err != nil {
		return nil, err
	}
	if err := artifact.Verify(); err != nil {
		return nil, err
	}
	return artifact, nil
}

// Latest loads the most recently created artifact.
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

// List returns artifact manifests, newest first. Directories without a
// readable manifest are skipped.
func (s *ArtifactStore) List(ctx context.Context) ([]domain.ArtifactInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading artifact directory: %w", err)
	}

	var infos []domain.ArtifactInfo //nolint:prealloc // staging and broken entries are skipped
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := s.readManifest(entry.Name())
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].ID > infos[j].ID
	})
	return infos, nil
}

// Delete removes an artifact directory.
func (s *ArtifactStore) Delete(_ context.Context, id string) error {
	if err := validID(id); err != nil {
		return domain.ErrNotFound
	}
	target := s.dir(id)
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("deleting artifact: %w", err)
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	return nil
}

func (s *ArtifactStore) dir(id string) string {
	return filepath.Join(s.root, id)
}

func (s *ArtifactStore) readManifest(id string) (domain.ArtifactInfo, error) {
	data, err := os.ReadFile(filepath.Join(s.dir(id), ManifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ArtifactInfo{}, domain.ErrNotFound
		}
		return domain.ArtifactInfo{}, fmt.Errorf("reading manifest: %w", err)
	}

	var info domain.ArtifactInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("%w: artifact %s manifest: %w", domain.ErrArtifactCorrupt, id, err)
	}
	return info, nil
}

func (s *ArtifactStore) readBlob(id, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir(id), name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: artifact %s is missing %s", domain.ErrArtifactCorrupt, id, name)
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// validID rejects IDs that would escape the store root.
func validID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: invalid artifact ID %q", domain.ErrInvalidInput, id)
	}
	return nil
}
