package binding

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrTargetNotFound = errors.New("sql target not found")
	ErrSQLParse       = errors.New("sql parse failure")
)

// TargetNotFoundError reports a keyed call whose .sql file could not be
// located or read.
type TargetNotFoundError struct {
	Key  string // dotted key from the call
	Path string // slash-separated relative path that was searched
	Err  error  // read failure when the file was found but unreadable
}

func (e *TargetNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("read %s for key %q: %v", e.Path, e.Key, e.Err)
	}
	return fmt.Sprintf("no file %s for key %q", e.Path, e.Key)
}

func (e *TargetNotFoundError) Unwrap() error { return e.Err }

// Is matches ErrTargetNotFound.
func (e *TargetNotFoundError) Is(target error) bool { return target == ErrTargetNotFound }

// SQLParseError reports SQL that the parameter parser rejected.
type SQLParseError struct {
	Path string // resolved file, empty for inline SQL
	Err  error
}

func (e *SQLParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("parse inline sql: %v", e.Err)
}

func (e *SQLParseError) Unwrap() error { return e.Err }

// Is matches ErrSQLParse.
func (e *SQLParseError) Is(target error) bool { return target == ErrSQLParse }
