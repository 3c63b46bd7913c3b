package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	domainconfig "namethatpage-backend/domain/config"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const corpusReloadDebounce = 250 * time.Millisecond

// CorpusWatcher serves the current seed corpus and reloads it when the file
// changes. An invalid edit is logged and the previous corpus stays active.
type CorpusWatcher struct {
	path    string
	current atomic.Pointer[domainconfig.SeedCorpus]
	logger  *zap.Logger

	mu        sync.Mutex
	callbacks []func(domainconfig.SeedCorpus)

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewCorpusWatcher loads the corpus at path. Watching starts with Start.
func NewCorpusWatcher(path string, logger *zap.Logger) (*CorpusWatcher, error) {
	corpus, err := LoadSeedCorpus(path)
	if err != nil {
		return nil, err
	}

	w := &CorpusWatcher{
		path:   filepath.Clean(path),
		logger: logger.Named("corpus_watcher"),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	w.current.Store(&corpus)
	return w, nil
}

// SeedCorpus returns the active corpus snapshot
func (w *CorpusWatcher) SeedCorpus() domainconfig.SeedCorpus {
	return *w.current.Load()
}

// OnChange registers a callback invoked after every successful reload
func (w *CorpusWatcher) OnChange(fn func(domainconfig.SeedCorpus)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start watches the corpus file's directory so that editors which replace
// the file by rename are also picked up.
func (w *CorpusWatcher) Start() error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()

	w.logger.Info("Seed corpus hot reloading enabled", zap.String("path", w.path))
	return nil
}

// Stop ends the watch loop
func (w *CorpusWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			<-w.done
		}
	})
}

func (w *CorpusWatcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(corpusReloadDebounce, func() {
				_ = w.Reload()
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			w.logger.Info("Stopping seed corpus watcher")
			return
		}
	}
}

// Reload re-reads the corpus file and swaps it in when valid
func (w *CorpusWatcher) Reload() error {
	corpus, err := LoadSeedCorpus(w.path)
	if err != nil {
		w.logger.Error("Invalid seed corpus after reload, keeping previous", zap.Error(err))
		return err
	}

	w.current.Store(&corpus)

	w.mu.Lock()
	callbacks := append([]func(domainconfig.SeedCorpus){}, w.callbacks...)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(corpus)
	}

	w.logger.Info("Seed corpus reloaded",
		zap.Int("categories", len(corpus.Categories)),
		zap.Int("denylist_terms", len(corpus.Denylist)),
	)
	return nil
}
