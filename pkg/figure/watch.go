package figure

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// ChangeFunc is called with the watched path after it settles.
type ChangeFunc func(path string) error

// Watcher re-runs a callback whenever one figure file changes. Callbacks
// run one at a time on the goroutine calling Run.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange ChangeFunc
	settled  chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches the directory holding path, so editors that replace
// the file on save are still seen.
func NewWatcher(path string, debounce time.Duration, onChange ChangeFunc) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		watcher:  fw,
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		settled:  make(chan struct{}, 1),
	}, nil
}

// Run blocks until ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	log.Info().Str("path", w.path).Msg("Watching figure")
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Watcher error")

		case <-w.settled:
			if err := w.onChange(w.path); err != nil {
				log.Error().Err(err).Str("path", w.path).Msg("Error handling figure change")
			}

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	// A change already queued covers this one too.
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.settled <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		log.Debug().Err(err).Msg("Error closing watcher")
	}
}

// Watch renders through fn once, then again after every change to path.
func Watch(ctx context.Context, path string, fn ChangeFunc) error {
	w, err := NewWatcher(path, DefaultDebounce, fn)
	if err != nil {
		return err
	}
	if err := fn(w.path); err != nil {
		log.Error().Err(err).Str("path", w.path).Msg("Initial figure render failed")
	}
	return w.Run(ctx)
}
