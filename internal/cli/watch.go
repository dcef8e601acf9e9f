package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// ScopeWatcher reloads a scope file whenever it changes and hands the new
// scope to Apply. Apply runs on the goroutine calling Run.
type ScopeWatcher struct {
	path     string
	debounce time.Duration
	apply    func(map[string]any) error
	logger   *slog.Logger
	fs       *fsnotify.Watcher
}

// NewScopeWatcher starts watching path. The parent directory is watched so
// editors that replace the file on save are still seen.
func NewScopeWatcher(path string, debounce time.Duration, apply func(map[string]any) error, logger *slog.Logger) (*ScopeWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScopeWatcher{
		path:     abs,
		debounce: debounce,
		apply:    apply,
		logger:   logger,
		fs:       fs,
	}, nil
}

// Run delivers reloads until ctx is done. A scope file that fails to load
// is logged and skipped; the previous values stay in place.
func (w *ScopeWatcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("scope file event", "path", event.Name, "op", event.Op.String())
			pending = time.After(w.debounce)

		case <-pending:
			pending = nil
			w.reload()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *ScopeWatcher) reload() {
	scope, err := LoadScope(w.path)
	if err != nil {
		w.logger.Warn("scope reload failed", "path", w.path, "error", err)
		return
	}
	if err := w.apply(scope); err != nil {
		w.logger.Warn("scope apply failed", "path", w.path, "error", err)
	}
}
