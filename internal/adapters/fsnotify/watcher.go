// Package fsnotify implements the ports.PluginWatcher interface using
// github.com/fsnotify/fsnotify. It watches plugin directories (non-recursively),
// filters out anything that is not a plugin shared library, and debounces
// bursts of events per file: a copy into the directory produces one Create and
// many Write events, and the library must not be opened half-written.
package fsnotify

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/cfk/internal/ports"
)

// DefaultQuiet is how long a file must stay untouched before its event fires.
const DefaultQuiet = 100 * time.Millisecond

// Watcher implements ports.PluginWatcher using fsnotify.
type Watcher struct {
	fw     *fsnotify.Watcher
	accept func(path string) bool
	quiet  time.Duration

	done     chan struct{}
	mu       sync.Mutex
	stopped  bool
	pending  map[string]*time.Timer
	inflight sync.WaitGroup
}

var _ ports.PluginWatcher = (*Watcher)(nil)

// NewWatcher creates a plugin directory watcher. accept decides which paths
// are plugins; nil accepts any file with the given shared library extension.
func NewWatcher(ext string, accept func(path string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if accept == nil {
		accept = func(path string) bool { return strings.HasSuffix(path, ext) }
	}
	return &Watcher{
		fw:      fw,
		accept:  accept,
		quiet:   DefaultQuiet,
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}, nil
}

// SetQuiet overrides the debounce interval. Call before Watch.
func (w *Watcher) SetQuiet(d time.Duration) {
	w.quiet = d
}

// Watch starts monitoring dirs.
func (w *Watcher) Watch(dirs []string, onEvent func(ports.PluginEvent)) error {
	added := 0
	var lastErr error
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			lastErr = err
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue // missing plugin dirs are normal
		}
		if err := w.fw.Add(abs); err != nil {
			lastErr = err
			continue
		}
		added++
	}
	if added == 0 {
		if lastErr != nil {
			return lastErr
		}
		return errors.New("no plugin directory to watch")
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if !w.accept(event.Name) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					w.schedule(event.Name, onEvent)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed; fsnotify recovers automatically

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// schedule (re)arms the trailing-edge timer for path.
func (w *Watcher) schedule(path string, onEvent func(ports.PluginEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.quiet)
		return
	}
	w.pending[path] = time.AfterFunc(w.quiet, func() { w.fire(path, onEvent) })
}

func (w *Watcher) fire(path string, onEvent func(ports.PluginEvent)) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	// Whether the file exists now decides the event, not the raw op.
	_, err := os.Stat(path)
	onEvent(ports.PluginEvent{Path: path, Removed: os.IsNotExist(err)})
}

// Stop ends monitoring and releases all resources. Pending events are
// dropped and in-flight callbacks are waited for.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fw.Close()
	w.inflight.Wait()
	return err
}
