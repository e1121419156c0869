// Package watch notifies the training service when a dataset file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/logger"
)

// Default timings.
const (
	// DefaultSettle is how long writes must be quiet before a change fires.
	DefaultSettle = 500 * time.Millisecond

	// DefaultMinInterval is the minimum gap between two onChange calls.
	DefaultMinInterval = 5 * time.Second
)

// FileWatcher implements driven.FileWatcher with fsnotify.
type FileWatcher struct {
	settle      time.Duration
	minInterval time.Duration
}

var _ driven.FileWatcher = (*FileWatcher)(nil)

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithSettle sets the quiet period that ends a burst of writes.
func WithSettle(d time.Duration) Option {
	return func(w *FileWatcher) {
		w.settle = d
	}
}

// WithMinInterval sets the minimum gap between onChange calls.
func WithMinInterval(d time.Duration) Option {
	return func(w *FileWatcher) {
		w.minInterval = d
	}
}

// NewFileWatcher creates a watcher with default timings.
func NewFileWatcher(opts ...Option) *FileWatcher {
	w := &FileWatcher{
		settle:      DefaultSettle,
		minInterval: DefaultMinInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch blocks until ctx is cancelled, calling onChange once each burst of
// writes to path has settled. The parent directory is watched so that
// editors which replace the file by rename are still seen.
func (w *FileWatcher) Watch(ctx context.Context, path string, onChange func(ctx context.Context)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	limiter := rate.NewLimiter(rate.Every(w.minInterval), 1)

	// The timer only runs while a burst is pending.
	timer := time.NewTimer(w.settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !relevant(event.Op) {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			timer.Reset(w.settle)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			onChange(ctx)
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}
