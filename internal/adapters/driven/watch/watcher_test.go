package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte("review,sentiment\n"), 0600))

	w := NewFileWatcher(WithSettle(50*time.Millisecond), WithMinInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, path, func(context.Context) { calls.Add(1) })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("review,sentiment\ngood,positive\n"), 0600))
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0600))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	w := NewFileWatcher()
	err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "x.csv"), func(context.Context) {})
	assert.Error(t, err)
}

func TestNewFileWatcher_Defaults(t *testing.T) {
	w := NewFileWatcher()
	assert.Equal(t, DefaultSettle, w.settle)
	assert.Equal(t, DefaultMinInterval, w.minInterval)
}
