// Package watcher provides debounced change notification for a task store.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/twiced-technology-gmbh/tasklane/internal/store"
)

// debounceDelay is the time to wait after the last file event before triggering
// a callback. This coalesces rapid changes (e.g., bulk actions) into a
// single notification.
const debounceDelay = 100 * time.Millisecond

// Watcher watches store directories for changes and invokes a callback
// with debouncing.
type Watcher struct {
	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	ignore   func(name string) bool
}

// New creates a Watcher that monitors the given paths for changes.
// The callback is invoked (debounced) whenever a file change is detected.
func New(paths []string, callback func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	return &Watcher{
		fsw:      fsw,
		callback: callback,
		ignore:   ignored,
	}, nil
}

// Paths returns the directories to watch for a store. The file backend
// keeps one directory per collection; sqlite writes its database file and
// journal next to each other in one directory.
func Paths(dir, backend, sqlitePath string) []string {
	if backend == store.BackendSQLite {
		return []string{filepath.Dir(sqlitePath)}
	}
	paths := make([]string, 0, len(store.Collections()))
	for _, c := range store.Collections() {
		paths = append(paths, filepath.Join(dir, c))
	}
	return paths
}

// ForStore watches the store rooted at dir.
func ForStore(dir, backend, sqlitePath string, callback func()) (*Watcher, error) {
	return New(Paths(dir, backend, sqlitePath), callback)
}

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn callback.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Only react to meaningful operations.
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.ignore(event.Name) {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.callback)
}

// ignored skips the lock file and in-flight temp files of the file store.
func ignored(name string) bool {
	base := filepath.Base(name)
	return base == ".lock" || strings.HasSuffix(base, ".tmp")
}
