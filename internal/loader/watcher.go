package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchDebounce sets the debounce duration for file change events. Non-positive values
// keep the default.
func WithWatchDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for the watcher.
func WithWatchLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// Watcher reloads the registry when the dataset file changes. It watches the containing
// directory so atomic saves (rename over the file) are seen.
type Watcher struct {
	source   *FileSource
	loader   *Loader
	debounce time.Duration
	logger   *zap.Logger

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	lastHash  string

	mu      sync.Mutex
	pending time.Time
}

func NewWatcher(source *FileSource, loader *Loader, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:   source,
		loader:   loader,
		debounce: 500 * time.Millisecond,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start records the current file hash and begins watching.
func (w *Watcher) Start() error {
	hash, err := w.source.Hash(context.Background())
	if err != nil {
		return fmt.Errorf("template watcher: initial hash: %w", err)
	}
	w.lastHash = hash

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("template watcher: create fsnotify: %w", err)
	}
	w.fsWatcher = fsw

	dir := filepath.Dir(w.source.Path())
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("template watcher: watch %s: %w", dir, err)
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop terminates the watcher and waits for the background goroutine to exit.
// It is safe to call Stop multiple times.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.done) })
	w.wg.Wait()
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	target := filepath.Clean(w.source.Path())
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// editors and ConfigMap mounts may only touch a sibling, the hash check filters noise
			if filepath.Clean(event.Name) == target || filepath.Base(event.Name) == "..data" {
				w.mu.Lock()
				w.pending = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("template watcher error", zap.Error(err))

		case <-ticker.C:
			w.processPending()
		}
	}
}

func (w *Watcher) processPending() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	w.processChange()
}

func (w *Watcher) processChange() {
	ctx := context.Background()

	newHash, err := w.source.Hash(ctx)
	if err != nil {
		w.logger.Error("template watcher: failed to hash dataset", zap.String("path", w.source.Path()), zap.Error(err))
		return
	}
	if newHash == w.lastHash {
		w.logger.Debug("template watcher: content unchanged, skipping", zap.String("path", w.source.Path()))
		return
	}
	oldHash := w.lastHash
	w.lastHash = newHash

	templates, err := w.source.Load(ctx)
	if err != nil {
		w.logger.Error("template watcher: failed to load dataset", zap.String("path", w.source.Path()), zap.Error(err))
		return
	}
	if err := w.loader.Apply(templates); err != nil {
		w.logger.Error("template watcher: dataset rejected, keeping previous snapshot", zap.Error(err))
		return
	}

	w.logger.Info("template dataset changed",
		zap.String("path", w.source.Path()),
		zap.String("old_hash", oldHash[:8]),
		zap.String("new_hash", newHash[:8]),
	)
}
