// Package watcher reloads the identifier tables when their files change.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader is anything that can re-read its backing files
type Reloader interface {
	Paths() []string
	Reload() error
}

// Watcher watches a set of files and triggers one reload per burst of writes
type Watcher struct {
	target   Reloader
	debounce time.Duration
	onReload func(error)
}

// New creates a watcher for the reloader's files
func New(target Reloader) *Watcher {
	return &Watcher{
		target:   target,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// OnReload registers a callback invoked after every reload attempt
func (w *Watcher) OnReload(fn func(error)) *Watcher {
	w.onReload = fn
	return w
}

// Watch blocks until the context is cancelled or the fsnotify watcher fails
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch directories so files replaced by rename are still seen
	watchedDirs := make(map[string]bool)
	fileSet := make(map[string]bool)
	for _, path := range w.target.Paths() {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		dir := filepath.Dir(absPath)
		if !watchedDirs[dir] {
			if err := fw.Add(dir); err != nil {
				log.Printf("watcher: failed to watch directory %s: %v", dir, err)
				continue
			}
			watchedDirs[dir] = true
		}
		fileSet[absPath] = true
		log.Printf("watcher: watching %s for changes", absPath)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			absPath, err := filepath.Abs(event.Name)
			if err != nil || !fileSet[absPath] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			// Both tables share one timer: an update job usually rewrites both.
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				log.Printf("watcher: %s changed, reloading tables", absPath)
				err := w.target.Reload()
				if err != nil {
					log.Printf("watcher: reload failed: %v", err)
				}
				if w.onReload != nil {
					w.onReload(err)
				}
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: error: %v", err)

		case <-ctx.Done():
			stop()
			return ctx.Err()
		}
	}
}
