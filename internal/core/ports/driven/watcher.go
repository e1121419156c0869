package driven

import "context"

// FileWatcher notifies when a file changes.
type FileWatcher interface {
	// Watch blocks until ctx is cancelled, calling onChange after each
	// burst of writes to path settles. onChange is never called concurrently.
	Watch(ctx context.Context, path string, onChange func(ctx context.Context)) error
}
