package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle.
const DefaultDebounce = 100 * time.Millisecond

// Batch is a settled set of file changes.
type Batch struct {
	// Paths are the changed files, sorted and unique.
	Paths []string
	// SQL is true when any changed file has the SQL extension.
	SQL bool
}

// SQLPaths returns the changed SQL files.
func (b Batch) SQLPaths(ext string) []string {
	var out []string
	for _, p := range b.Paths {
		if strings.EqualFold(filepath.Ext(p), ext) {
			out = append(out, p)
		}
	}
	return out
}

// Watcher reports file changes under a root, directories added after
// start included.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	ext      string
	exclude  map[string]bool
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher starts watching opts.Root recursively.
func NewWatcher(opts Options) (*Watcher, error) {
	opts = opts.withDefaults()
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		root:     filepath.Clean(opts.Root),
		ext:      opts.Extension,
		exclude:  excludeSet(opts.Exclude),
		debounce: DefaultDebounce,
		logger:   opts.Logger,
	}
	if _, err := w.watchDir(w.root); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", w.root, err)
	}
	return w, nil
}

// SetDebounce changes the settle interval. Call before Run.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Close stops the watcher.
func (w *Watcher) Close() error { return w.fs.Close() }

// Run delivers batches to fn until ctx is done. fn runs on the Run
// goroutine, one batch at a time.
func (w *Watcher) Run(ctx context.Context, fn func(Batch)) error {
	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			paths := w.changed(event)
			if len(paths) == 0 {
				continue
			}
			for _, p := range paths {
				pending[p] = true
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			if len(pending) == 0 {
				continue
			}
			batch := w.flush(pending)
			pending = make(map[string]bool)
			w.logger.Debug("files changed", "files", len(batch.Paths), "sql", batch.SQL)
			fn(batch)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// changed returns the paths an event adds to the pending batch. A new
// directory contributes the files already inside it, since they arrive
// without events of their own.
func (w *Watcher) changed(event fsnotify.Event) []string {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return nil
	}
	if w.inExcluded(event.Name) {
		return nil
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			files, err := w.watchDir(event.Name)
			if err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return files
		}
	}
	return []string{event.Name}
}

func (w *Watcher) inExcluded(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.exclude[part] {
			return true
		}
	}
	return false
}

func (w *Watcher) flush(pending map[string]bool) Batch {
	batch := Batch{Paths: make([]string, 0, len(pending))}
	for p := range pending {
		batch.Paths = append(batch.Paths, p)
		if strings.EqualFold(filepath.Ext(p), w.ext) {
			batch.SQL = true
		}
	}
	sort.Strings(batch.Paths)
	return batch
}

// watchDir recursively adds a directory to the watcher and returns the
// files found below it.
func (w *Watcher) watchDir(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
			return nil
		}
		if path != w.root && w.exclude[d.Name()] {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
	return files, err
}
