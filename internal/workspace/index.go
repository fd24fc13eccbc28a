package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultExclude lists directory names skipped by every walk.
var DefaultExclude = []string{"node_modules", ".git"}

// Options configures an Index or Watcher.
type Options struct {
	// Root is the workspace directory.
	Root string
	// Extension is the SQL file suffix, ".sql" by default.
	Extension string
	// Exclude lists directory names skipped at any depth. Nil means DefaultExclude.
	Exclude []string
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Root == "" {
		o.Root = "."
	}
	if o.Extension == "" {
		o.Extension = ".sql"
	}
	if o.Exclude == nil {
		o.Exclude = DefaultExclude
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Index caches the relative paths of every SQL file under the root.
// The cache is built on first use and rebuilt after Invalidate.
//
// Index is safe for concurrent use.
type Index struct {
	root    string
	ext     string
	exclude map[string]bool
	logger  *slog.Logger

	mu    sync.Mutex
	paths []string
	built bool
}

// NewIndex creates an Index. Nothing is read until the first lookup.
func NewIndex(opts Options) *Index {
	opts = opts.withDefaults()
	return &Index{
		root:    filepath.Clean(opts.Root),
		ext:     opts.Extension,
		exclude: excludeSet(opts.Exclude),
		logger:  opts.Logger,
	}
}

// Root returns the workspace directory.
func (ix *Index) Root() string { return ix.root }

// Extension returns the SQL file suffix.
func (ix *Index) Extension() string { return ix.ext }

// Excluded reports whether a directory name is skipped.
func (ix *Index) Excluded(name string) bool { return ix.exclude[name] }

// Invalidate drops the cache so the next lookup walks the tree again.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	ix.built = false
	ix.paths = nil
	ix.mu.Unlock()
}

// Paths returns the slash-separated relative paths of all SQL files in
// lexical walk order.
func (ix *Index) Paths(ctx context.Context) ([]string, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.built {
		paths, err := ix.scan(ctx)
		if err != nil {
			return nil, err
		}
		ix.paths = paths
		ix.built = true
		ix.logger.Debug("sql index built", "root", ix.root, "files", len(paths))
	}
	return ix.paths, nil
}

// Find returns the first SQL file whose relative path equals rel or ends
// with "/"+rel. rel is slash separated, e.g. "users/findById.sql".
func (ix *Index) Find(ctx context.Context, rel string) (string, bool, error) {
	paths, err := ix.Paths(ctx)
	if err != nil {
		return "", false, err
	}
	rel = strings.TrimPrefix(rel, "/")
	for _, p := range paths {
		if p == rel || strings.HasSuffix(p, "/"+rel) {
			return filepath.Join(ix.root, filepath.FromSlash(p)), true, nil
		}
	}
	return "", false, nil
}

// ReadFile reads a file returned by Find.
func (ix *Index) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (ix *Index) scan(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == ix.root {
				return err
			}
			ix.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != ix.root && ix.exclude[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ix.ext) {
			return nil
		}
		rel, err := filepath.Rel(ix.root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", ix.root, err)
	}
	return paths, nil
}

func excludeSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
