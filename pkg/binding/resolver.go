package binding

import (
	"context"
	"fmt"
	"strings"

	"github.com/joeandaverde/vscode-tinypg/pkg/callsite"
	"github.com/joeandaverde/vscode-tinypg/pkg/core"
	"github.com/joeandaverde/vscode-tinypg/pkg/sqlparam"
)

// DefaultExtension is appended to keyed targets.
const DefaultExtension = ".sql"

// Expected is the resolved parameter set of a call site.
type Expected struct {
	Names []string
	// Path is the .sql file the names came from; empty for inline SQL.
	Path string
}

// Resolver maps a call site to the parameters its SQL expects.
// Failures are *TargetNotFoundError or *SQLParseError, or a context error.
type Resolver interface {
	Form() core.CallForm
	Resolve(ctx context.Context, site callsite.CallSite) (Expected, error)
}

// ParseFunc extracts parameter names from SQL text.
type ParseFunc func(sql string) ([]string, error)

// InlineResolver parses the call's literal as SQL.
type InlineResolver struct {
	// Parse defaults to sqlparam.Names.
	Parse ParseFunc
}

// Form implements Resolver.
func (r InlineResolver) Form() core.CallForm { return core.FormInline }

// Resolve implements Resolver.
func (r InlineResolver) Resolve(ctx context.Context, site callsite.CallSite) (Expected, error) {
	if err := ctx.Err(); err != nil {
		return Expected{}, err
	}
	names, err := parseWith(r.Parse, site.Literal)
	if err != nil {
		return Expected{}, &SQLParseError{Err: err}
	}
	return Expected{Names: names}, nil
}

// FileLocator finds and reads SQL files. Find returns the location of the
// first file matching a slash-separated relative path, or ok false.
type FileLocator interface {
	Find(ctx context.Context, relPath string) (path string, ok bool, err error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// KeyedResolver treats the literal as a dotted key naming a .sql file.
type KeyedResolver struct {
	Files FileLocator
	// Extension defaults to DefaultExtension.
	Extension string
	// Parse defaults to sqlparam.Names.
	Parse ParseFunc
}

// Form implements Resolver.
func (r KeyedResolver) Form() core.CallForm { return core.FormKeyed }

// Resolve implements Resolver.
func (r KeyedResolver) Resolve(ctx context.Context, site callsite.CallSite) (Expected, error) {
	rel := KeyPath(site.Literal, r.Extension)

	path, ok, err := r.Files.Find(ctx, rel)
	if err != nil {
		if ctx.Err() != nil {
			return Expected{}, ctx.Err()
		}
		return Expected{}, &TargetNotFoundError{Key: site.Literal, Path: rel, Err: err}
	}
	if !ok {
		return Expected{}, &TargetNotFoundError{Key: site.Literal, Path: rel}
	}

	content, err := r.Files.ReadFile(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return Expected{}, ctx.Err()
		}
		return Expected{}, &TargetNotFoundError{Key: site.Literal, Path: rel, Err: err}
	}

	names, err := parseWith(r.Parse, string(content))
	if err != nil {
		return Expected{}, &SQLParseError{Path: path, Err: err}
	}
	return Expected{Names: names, Path: path}, nil
}

// KeyPath converts a dotted key to a slash-separated relative path:
// "users.findById" becomes "users/findById.sql".
func KeyPath(key, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ReplaceAll(key, ".", "/") + ext
}

func parseWith(parse ParseFunc, sql string) (names []string, err error) {
	if parse == nil {
		parse = sqlparam.Names
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sql parser panic: %v", r)
		}
	}()
	return parse(sql)
}
