// Package watcher reloads project files into a running session when they
// change on disk.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"floorlink/internal/codec"
	"floorlink/internal/domain"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Importer receives a freshly parsed project.
type Importer interface {
	Import(ctx context.Context, p *domain.Project) error
}

// Watcher watches a single file for changes
type Watcher struct {
	path     string
	onChange func(path string)
	debounce time.Duration
}

// New creates a new file watcher
func New(path string, onChange func(path string)) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Watch blocks until ctx is cancelled, calling onChange once per burst of
// writes to the file. The parent directory is watched so editors that
// replace the file on save are still seen.
func (w *Watcher) Watch(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Printf("Watcher: watching %s for changes", abs)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Watcher: %s changed", abs)
				w.onChange(abs)
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher: error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Reload parses path with the codec its extension selects and imports it.
func Reload(ctx context.Context, dst Importer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	c := codec.ForPath(path)
	p, err := c.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s as %s: %w", path, c.Format(), err)
	}
	return dst.Import(ctx, p)
}

// WatchProject imports path once, then again every time it changes. Parse
// failures after the first load are logged and the session keeps its
// current state.
func WatchProject(ctx context.Context, dst Importer, path string, debounce time.Duration) error {
	if err := Reload(ctx, dst, path); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	w := New(path, func(p string) {
		if err := Reload(ctx, dst, p); err != nil {
			log.Printf("Watcher: reload %s: %v", p, err)
		}
	}).WithDebounce(debounce)
	return w.Watch(ctx)
}
