package config

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/moolen/faultline/internal/logging"
)

// ChangeCallback is invoked after a debounced change of the watched file.
// Errors are logged and watching continues.
type ChangeCallback func() error

// WatcherConfig holds configuration for the Watcher.
type WatcherConfig struct {
	// FilePath is the file to watch.
	FilePath string

	// Debounce coalesces bursts of events (editor save sequences) into one
	// callback. Default: 500ms.
	Debounce time.Duration
}

// Watcher watches a single file and calls back on change. It implements
// lifecycle.Component.
type Watcher struct {
	config   WatcherConfig
	callback ChangeCallback
	logger   *logging.Logger

	mu            sync.Mutex
	cancel        context.CancelFunc
	stopped       chan struct{}
	ready         chan struct{}
	startErr      error
	debounceTimer *time.Timer
	closed        bool
}

// NewWatcher creates a watcher for config.FilePath.
func NewWatcher(config WatcherConfig, callback ChangeCallback) (*Watcher, error) {
	if config.FilePath == "" {
		return nil, errors.New("FilePath cannot be empty")
	}
	if callback == nil {
		return nil, errors.New("callback cannot be nil")
	}
	if config.Debounce <= 0 {
		config.Debounce = 500 * time.Millisecond
	}

	return &Watcher{
		config:   config,
		callback: callback,
		logger:   logging.GetLogger("config.watcher"),
		stopped:  make(chan struct{}),
		ready:    make(chan struct{}),
	}, nil
}

// Name implements lifecycle.Component.
func (w *Watcher) Name() string { return "subjects-watcher" }

// Start begins watching and returns once the watch is established.
func (w *Watcher) Start(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	go w.watchLoop(watchCtx)

	select {
	case <-w.ready:
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	case <-time.After(5 * time.Second):
		cancel()
		return errors.New("timeout waiting for file watcher to initialize")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.startErr
}

func (w *Watcher) signalReady(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.ready:
	default:
		w.startErr = err
		close(w.ready)
	}
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.stopped)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.signalReady(fmt.Errorf("failed to create file watcher: %w", err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.config.FilePath); err != nil {
		w.signalReady(fmt.Errorf("failed to watch file %s: %w", w.config.FilePath, err))
		return
	}

	w.logger.Info("Watching %s for changes (debounce: %s)", w.config.FilePath, w.config.Debounce)
	w.signalReady(nil)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			// Atomic writes replace the inode; the watch must be re-added.
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(50 * time.Millisecond)
				if err := watcher.Add(w.config.FilePath); err != nil {
					w.logger.Warn("Failed to re-add watch after %s: %v", event.Op, err)
				}
			}
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.config.Debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	w.logger.Info("%s changed", w.config.FilePath)
	if err := w.callback(); err != nil {
		w.logger.ErrorWithErr("Change callback failed (continuing to watch)", err)
	}
}

// Stop ends the watch loop and cancels any pending callback.
func (w *Watcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	cancel := w.cancel
	w.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
