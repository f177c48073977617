package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/logger"
)

// DefaultDebounce groups the burst of events an editor emits on save.
const DefaultDebounce = 500 * time.Millisecond

// ChangeType classifies a change to the watched source.
type ChangeType int

// Change types.
const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change reports that the watched source changed.
type Change struct {
	Path string
	Type ChangeType
}

// Watcher reports changes to a single source document.
//
// The parent directory is watched rather than the file itself, so editors
// that save by writing a temp file and renaming it are still seen.
type Watcher struct {
	path     string
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// NewWatcher creates a watcher for path. A negative debounce uses DefaultDebounce.
func NewWatcher(path string, debounce time.Duration) *Watcher {
	if debounce < 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: path, debounce: debounce}
}

// Path returns the watched path.
func (w *Watcher) Path() string {
	return w.path
}

// Watch starts watching and returns a channel of debounced changes.
// The channel closes when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, errors.New("watcher is closed")
	}
	if w.watcher != nil {
		return nil, errors.New("watcher already started")
	}

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", w.path, err)
	}
	w.path = abs

	dir := filepath.Dir(abs)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: directory %s", domain.ErrSourceNotFound, dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w.watcher = fw

	out := make(chan Change, 1)
	go w.loop(ctx, fw, out)

	logger.Debug("Watching %s", abs)
	return out, nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- Change) {
	defer close(out)

	var pending *Change
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			// The last event of a burst describes the final state.
			pending = change
			fire = time.After(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error on %s: %v", w.path, err)

		case <-fire:
			fire = nil
			if pending == nil {
				continue
			}
			select {
			case out <- *pending:
			case <-ctx.Done():
				return
			}
			pending = nil
		}
	}
}

// handleFsEvent maps a raw event to a change of the watched file, or nil
// when the event concerns another file or carries nothing to act on.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	if filepath.Clean(event.Name) != w.path {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Path: w.path, Type: ChangeDeleted}
	case event.Has(fsnotify.Create):
		return &Change{Path: w.path, Type: ChangeCreated}
	case event.Has(fsnotify.Write):
		return &Change{Path: w.path, Type: ChangeUpdated}
	default:
		return nil
	}
}
