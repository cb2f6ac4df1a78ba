package plan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is how long the watcher waits after the last
// file event before triggering a rebuild. Editors and sync tools produce
// bursts of events per save; one rebuild per burst is enough.
const DefaultDebounceInterval = 250 * time.Millisecond

// SpecWatcher watches a spec file (or a directory of spec files) and
// triggers a rebuild callback when it changes.
//
// When given a single file it watches the file's parent directory and
// filters events down to that file name: most editors save by writing a
// temp file and renaming it over the original, which drops a watch placed
// on the file itself.
type SpecWatcher struct {
	path     string
	interval time.Duration
	logger   *slog.Logger

	watcher  *fsnotify.Watcher
	debounce *Debouncer

	// target is the base name to match when watching a single file;
	// empty when watching a directory.
	target string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSpecWatcher creates a watcher for the given spec path. A zero
// interval uses DefaultDebounceInterval.
func NewSpecWatcher(path string, interval time.Duration, logger *slog.Logger) (*SpecWatcher, error) {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &SpecWatcher{
		path:     path,
		interval: interval,
		logger:   logger,
		watcher:  fsw,
		debounce: NewDebouncer(interval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, invoking onChange (debounced) whenever the spec changes,
// until the context is cancelled or Stop is called. A failing onChange is
// logged and watching continues; a stale plan from a bad intermediate
// save should not kill the daemon.
func (w *SpecWatcher) Watch(ctx context.Context, onChange func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	info, err := os.Stat(w.path)
	if err != nil {
		return fmt.Errorf("failed to stat watch path: %w", err)
	}
	watchDir := w.path
	if !info.IsDir() {
		watchDir = filepath.Dir(w.path)
		w.target = filepath.Base(w.path)
	}
	if err := w.watcher.Add(watchDir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", watchDir, err)
	}

	w.logger.Info("Spec watcher started",
		"path", w.path,
		"debounce_ms", w.interval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Spec watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("Spec watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Spec change detected", "path", event.Name, "op", event.Op.String())
			w.debounce.Trigger(func() {
				w.logger.Info("Rebuilding plan after spec change", "path", event.Name)
				if err := onChange(); err != nil {
					w.logger.Error("Plan rebuild failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Spec watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for Watch to return.
func (w *SpecWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// relevant filters raw fsnotify events down to ones that can change the
// spec's content.
func (w *SpecWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	base := filepath.Base(event.Name)
	if w.target != "" {
		return base == w.target
	}

	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Debouncer collapses bursts of events into a single callback invocation
// after a quiet period.
type Debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger (re)arms the debouncer. The most recent callback runs once the
// quiet period elapses with no further triggers.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	cb := d.callback
	stopped := d.stopped
	d.mu.Unlock()

	if cb != nil && !stopped {
		cb()
	}
}

// Stop cancels any pending callback. The debouncer cannot be reused.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
