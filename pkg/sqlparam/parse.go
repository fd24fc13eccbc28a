package sqlparam

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every *SyntaxError.
var ErrSyntax = errors.New("sql syntax error")

// Parameter is a named placeholder referenced by a statement.
type Parameter struct {
	Name   string
	Offset int // byte offset of the first occurrence, at the colon
}

// SyntaxError reports SQL text that cannot be scanned to the end.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

// Is makes errors.Is(err, ErrSyntax) true for any SyntaxError.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Parse returns the distinct named parameters of sql in first-occurrence order.
func Parse(sql string) ([]Parameter, error) {
	s := newScanner(sql)
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.params, nil
}

// Names is Parse reduced to parameter names.
func Names(sql string) ([]string, error) {
	params, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names, nil
}
