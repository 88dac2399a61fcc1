package file

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/usersearch/internal/logger"
)

// reloadDelay coalesces the burst of events one save produces.
const reloadDelay = 100 * time.Millisecond

// Watcher reloads a ConfigStore when its file changes on disk and then
// calls the registered listeners.
type Watcher struct {
	store   *ConfigStore
	watcher *fsnotify.Watcher

	mu        sync.Mutex
	listeners []func()
	timer     *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts watching the directory that holds store's file.
// The directory is watched rather than the file so that atomic replaces
// are seen.
func NewWatcher(store *ConfigStore) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(store.Path())); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(store.Path()), err)
	}

	w := &Watcher{
		store:   store,
		watcher: fw,
		done:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// OnChange registers fn to run after every reload.
func (w *Watcher) OnChange(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	path := filepath.Clean(w.store.Path())

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher: %v", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDelay, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	if err := w.store.Load(); err != nil {
		logger.Warn("reloading %s: %v", w.store.Path(), err)
		return
	}
	logger.Debug("reloaded %s", w.store.Path())

	w.mu.Lock()
	listeners := append([]func(){}, w.listeners...)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
