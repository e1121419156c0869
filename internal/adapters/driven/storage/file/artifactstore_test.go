package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/critic/internal/core/domain"
)

func testArtifact(id string, created time.Time) *domain.Artifact {
	return &domain.Artifact{
		Info: domain.ArtifactInfo{
			ID:          id,
			ModelName:   "Random Forest",
			Kind:        domain.ModelRandomForest,
			Accuracy:    0.8,
			ClassPriors: [domain.NumClasses]float64{0.5, 0.5},
			CreatedAt:   created,
		},
		Model:      []byte(`{"kind":"random_forest"}`),
		Vocabulary: []byte(`{"terms":["great"]}`),
	}
}

func newStore(t *testing.T) *ArtifactStore {
	t.Helper()
	store, err := NewArtifactStore(filepath.Join(t.TempDir(), "artifacts"))
	require.NoError(t, err)
	return store
}

func TestArtifactStore_SaveWritesDirectory(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	info, err := store.Save(ctx, testArtifact("a1", time.Now().UTC()))
	require.NoError(t, err)
	assert.NotEmpty(t, info.ModelChecksum)

	for _, name := range []string{ManifestFile, ModelFile, VocabularyFile} {
		assert.FileExists(t, filepath.Join(store.Root(), "a1", name))
	}

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staging directory should be gone")
}

func TestArtifactStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	info, err := store.Save(ctx, testArtifact("a1", created))
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, info, loaded.Info)
	assert.Equal(t, []byte(`{"kind":"random_forest"}`), loaded.Model)
}

func TestArtifactStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Save(ctx, testArtifact("a1", time.Now().UTC()))
	require.NoError(t, err)
	replacement := testArtifact("a1", time.Now().UTC())
	replacement.Model = []byte(`{"kind":"random_forest","trees":5}`)
	_, err = store.Save(ctx, replacement)
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, replacement.Model, loaded.Model)
}

func TestArtifactStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"parent", ".."},
		{"separator", "a/b"},
		{"hidden", ".staging-x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(ctx, testArtifact(tt.id, time.Now()))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Latest(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "missing"), domain.ErrNotFound)
}

func TestArtifactStore_CorruptionIsDetected(t *testing.T) {
	ctx := context.Background()

	t.Run("tampered blob", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Save(ctx, testArtifact("a1", time.Now()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "a1", ModelFile), []byte("{}"), 0600))

		_, err = store.Load(ctx, "a1")
		assert.ErrorIs(t, err, domain.ErrArtifactCorrupt)
	})

	t.Run("missing blob", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Save(ctx, testArtifact("a1", time.Now()))
		require.NoError(t, err)
		require.NoError(t, os.Remove(filepath.Join(store.Root(), "a1", VocabularyFile)))

		_, err = store.Load(ctx, "a1")
		assert.ErrorIs(t, err, domain.ErrArtifactCorrupt)
	})

	t.Run("unreadable manifest", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Save(ctx, testArtifact("a1", time.Now()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "a1", ManifestFile), []byte("not json"), 0600))

		_, err = store.Load(ctx, "a1")
		assert.ErrorIs(t, err, domain.ErrArtifactCorrupt)
	})
}

func TestArtifactStore_ListLatestDelete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.Save(ctx, testArtifact("old", base))
	require.NoError(t, err)
	_, err = store.Save(ctx, testArtifact("new", base.Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(store.Root(), ".staging-left-over"), 0700))
	require.NoError(t, os.MkdirAll(filepath.Join(store.Root(), "no-manifest"), 0700))

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "new", infos[0].ID)
	assert.Equal(t, "old", infos[1].ID)

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", latest.Info.ID)

	require.NoError(t, store.Delete(ctx, "new"))
	assert.NoDirExists(t, filepath.Join(store.Root(), "new"))

	latest, err = store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", latest.Info.ID)
}
