package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/semschema/config"
	"github.com/c360studio/semschema/ingest"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long changes accumulate before a rebuild.
const defaultDebounce = 500 * time.Millisecond

// SchemaWatcher reports batches of changed schema files below the
// directories of the configured path sources.
type SchemaWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	// Debouncing: collect changes before reporting
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// Content hashes so saves without changes are ignored
	hashes map[string]string

	changes chan []string
}

// NewSchemaWatcher creates a watcher over the directories of sources.
func NewSchemaWatcher(sources []config.SchemaSource, debounce time.Duration, logger *slog.Logger) (*SchemaWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &SchemaWatcher{
		watcher:  fsw,
		logger:   logger,
		debounce: debounce,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		changes:  make(chan []string, 1),
	}

	for _, dir := range watchDirs(sources) {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
		logger.Debug("Watching directory", "path", dir)
	}
	return w, nil
}

// watchDirs returns the static directory of every path source, deduplicated.
func watchDirs(sources []config.SchemaSource) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, s := range sources {
		if s.Path == "" {
			continue
		}
		dir := filepath.Dir(s.Path)
		if isGlob(s.Path) {
			base, _ := doublestar.SplitPattern(filepath.ToSlash(s.Path))
			dir = filepath.FromSlash(base)
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// Changes returns batches of changed file paths. The channel is closed when
// Run returns.
func (w *SchemaWatcher) Changes() <-chan []string {
	return w.changes
}

// Run processes events until ctx is done or the watcher is closed.
func (w *SchemaWatcher) Run(ctx context.Context) {
	defer close(w.changes)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if batch := w.flushPending(); len(batch) > 0 {
				select {
				case w.changes <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// Close stops the watcher.
func (w *SchemaWatcher) Close() error {
	return w.watcher.Close()
}

func (w *SchemaWatcher) handleFSEvent(event fsnotify.Event) {
	if _, ok := ingest.FormatForPath(event.Name); !ok {
		return
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Schema change detected", "path", event.Name, "op", event.Op.String())
}

// flushPending returns the accumulated paths whose content changed.
func (w *SchemaWatcher) flushPending() []string {
	w.pendingMu.Lock()
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var changed []string
	for path, op := range toProcess {
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			delete(w.hashes, path)
			changed = append(changed, path)
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			delete(w.hashes, path)
			changed = append(changed, path)
			continue
		}
		sum := sha256.Sum256(content)
		hash := hex.EncodeToString(sum[:])
		if w.hashes[path] == hash {
			continue
		}
		w.hashes[path] = hash
		changed = append(changed, path)
	}
	sort.Strings(changed)
	return changed
}

// watch regenerates after every batch of schema changes until ctx is done.
// Failed runs are logged and the previous output is left in place.
func watch(ctx context.Context, app *App, logger *slog.Logger) error {
	w, err := NewSchemaWatcher(app.cfg.Schemas, defaultDebounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	go w.Run(ctx)
	logger.Info("Watching schemas for changes")

	for batch := range w.Changes() {
		logger.Info("Schemas changed, regenerating", "files", batch)
		if _, err := app.Generate(ctx); err != nil {
			logger.Error("Generation failed", "error", err)
		}
	}
	return ctx.Err()
}
