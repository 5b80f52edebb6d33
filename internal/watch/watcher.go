// Package watch reports changes to a recipe tree.
//
// fsnotify watches are not recursive, so RecipeWatcher adds one watch per
// directory and extends the set as directories appear. Bursts of events,
// as produced by editors and checkouts, are debounced into a single Change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"buildall/internal/recipe"
	"buildall/pkg/logging"
)

// DefaultDebounce is used when no debounce interval is given.
const DefaultDebounce = 500 * time.Millisecond

// Change lists the recipe files touched during one debounce window.
type Change struct {
	Paths     []string
	Timestamp time.Time
}

// RecipeWatcher watches a recipe tree for meta.yaml changes.
type RecipeWatcher struct {
	mu sync.Mutex

	root     string
	watcher  *fsnotify.Watcher
	watched  map[string]bool
	debounce time.Duration

	// pending collects paths until the debounce timer fires
	pending map[string]bool
	timer   *time.Timer

	stopCh  chan struct{}
	running bool
}

// NewRecipeWatcher creates a watcher for root.
func NewRecipeWatcher(root string, debounce time.Duration) *RecipeWatcher {
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &RecipeWatcher{
		root:     filepath.Clean(root),
		watched:  make(map[string]bool),
		debounce: debounce,
		pending:  make(map[string]bool),
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching. Changes are sent to changes until ctx is done or
// Stop is called; a Change is dropped when the channel is full.
func (w *RecipeWatcher) Start(ctx context.Context, changes chan<- Change) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	if _, err := w.addTree(w.root); err != nil {
		_ = w.Stop()
		return err
	}

	go w.processEvents(ctx, watcher, changes)

	logging.Info("RecipeWatcher", "Watching %s for recipe changes", w.root)
	return nil
}

// addTree watches dir and every directory below it. It returns the
// meta.yaml files found.
func (w *RecipeWatcher) addTree(dir string) ([]string, error) {
	var metas []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != dir && os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			if d.Name() == recipe.MetaFilename {
				metas = append(metas, path)
			}
			return nil
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.watcher == nil || w.watched[path] {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		w.watched[path] = true
		logging.Debug("RecipeWatcher", "Watching directory: %s", path)
		return nil
	})
	return metas, err
}

func (w *RecipeWatcher) processEvents(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- Change) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return

		case <-w.stopCh:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, changes)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("RecipeWatcher", err, "Filesystem watcher error")
		}
	}
}

func (w *RecipeWatcher) handleEvent(event fsnotify.Event, changes chan<- Change) {
	switch {
	case filepath.Base(event.Name) == recipe.MetaFilename:
		w.record(changes, event.Name)

	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil || !info.IsDir() {
			return
		}
		// files created before the watch was added produce no event
		metas, err := w.addTree(event.Name)
		if err != nil {
			logging.Warn("RecipeWatcher", "Failed to watch %s: %v", event.Name, err)
		}
		w.record(changes, metas...)

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		w.mu.Lock()
		wasDir := w.watched[event.Name]
		for path := range w.watched {
			if path == event.Name || isWithin(event.Name, path) {
				delete(w.watched, path)
			}
		}
		w.mu.Unlock()
		if wasDir {
			w.record(changes, filepath.Join(event.Name, recipe.MetaFilename))
		}
	}
}

// record adds paths to the pending set and restarts the debounce timer.
func (w *RecipeWatcher) record(changes chan<- Change, paths ...string) {
	if len(paths) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	for _, p := range paths {
		w.pending[p] = true
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.flush(changes) })
}

func (w *RecipeWatcher) flush(changes chan<- Change) {
	w.mu.Lock()
	if !w.running || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	change := Change{Timestamp: time.Now()}
	for p := range w.pending {
		change.Paths = append(change.Paths, p)
	}
	w.pending = make(map[string]bool)
	w.timer = nil
	w.mu.Unlock()

	sort.Strings(change.Paths)
	select {
	case changes <- change:
		logging.Debug("RecipeWatcher", "Emitted change for %d recipe files", len(change.Paths))
	default:
		logging.Warn("RecipeWatcher", "Change channel full, dropping change for %d recipe files", len(change.Paths))
	}
}

// Stop stops watching. It is safe to call more than once.
func (w *RecipeWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = make(map[string]bool)
	w.watched = make(map[string]bool)

	var err error
	if w.watcher != nil {
		err = w.watcher.Close()
		w.watcher = nil
	}
	logging.Info("RecipeWatcher", "Stopped watching %s", w.root)
	return err
}

func isWithin(dir, path string) bool {
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
