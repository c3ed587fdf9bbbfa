// Package watch uploads PDFs that appear in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 750 * time.Millisecond

// Config controls a watch run.
type Config struct {
	Logger *slog.Logger
	Dir    string
	// Debounce coalesces the burst of events a file copy produces.
	Debounce time.Duration
	// InitialScan hands PDFs already present in Dir to the handler on start.
	InitialScan bool
}

// Handler is called once per settled PDF. Calls are sequential.
type Handler func(ctx context.Context, path string) error

// IsPDF reports whether path has a .pdf extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Watch blocks until ctx is canceled, handing every PDF created or written in
// cfg.Dir to handler once it has been quiet for the debounce period. Handler
// errors are logged and do not stop the watch.
func Watch(ctx context.Context, cfg Config, handler Handler) error {
	if cfg.Dir == "" {
		return errors.New("watch directory is required")
	}
	if handler == nil {
		return errors.New("handler is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return fmt.Errorf("failed to stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", cfg.Dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Debug("failed to close watcher", "error", err)
		}
	}()

	if err := w.Add(cfg.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Dir, err)
	}
	logger.Info("watching for PDFs", "dir", cfg.Dir, "debounce", cfg.Debounce)

	d := newDebouncer(cfg.Debounce)
	defer d.stop()

	if cfg.InitialScan {
		entries, err := os.ReadDir(cfg.Dir)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", cfg.Dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && IsPDF(entry.Name()) {
				d.touch(filepath.Join(cfg.Dir, entry.Name()))
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !IsPDF(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				d.touch(event.Name)
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				d.forget(event.Name)
			}

		case path := <-d.ready:
			if _, err := os.Stat(path); err != nil {
				logger.Debug("settled file disappeared", "path", path, "error", err)
				continue
			}
			if err := handler(ctx, path); err != nil {
				logger.Warn("failed to handle file", "path", path, "error", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// debouncer emits a path on ready once no touch happened for delay.
type debouncer struct {
	timers map[string]*time.Timer
	ready  chan string
	done   chan struct{}
	delay  time.Duration
	mu     sync.Mutex
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		ready:  make(chan string),
		done:   make(chan struct{}),
		delay:  delay,
	}
}

func (d *debouncer) touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.timers[path] != t {
			d.mu.Unlock()
			return
		}
		delete(d.timers, path)
		d.mu.Unlock()

		select {
		case d.ready <- path:
		case <-d.done:
		}
	})
	d.timers[path] = t
}

func (d *debouncer) forget(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Stop()
		delete(d.timers, path)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
	close(d.done)
}
