package sqlparam

import "strings"

type scanner struct {
	src    string
	n      int
	i      int
	params []Parameter
	seen   map[string]struct{}
}

func newScanner(src string) *scanner {
	return &scanner{
		src:  src,
		n:    len(src),
		seen: make(map[string]struct{}),
	}
}

func (s *scanner) peek(k int) byte {
	if s.i+k < s.n {
		return s.src[s.i+k]
	}
	return 0
}

func (s *scanner) run() error {
	for s.i < s.n {
		var err error
		switch c := s.src[s.i]; {
		case c == '\'':
			err = s.consumeQuoted('\'', s.escapeString())
		case c == '"':
			err = s.consumeQuoted('"', false)
		case c == '-' && s.peek(1) == '-':
			s.consumeLineComment()
		case c == '/' && s.peek(1) == '*':
			err = s.consumeBlockComment()
		case c == '$':
			err = s.consumeDollar()
		case c == ':':
			s.consumeColon()
		default:
			s.i++
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// escapeString reports whether the quote at s.i opens an E'...' string.
func (s *scanner) escapeString() bool {
	if s.i == 0 {
		return false
	}
	prev := s.src[s.i-1]
	if prev != 'E' && prev != 'e' {
		return false
	}
	return s.i == 1 || !isIdentPart(s.src[s.i-2])
}

func (s *scanner) consumeQuoted(quote byte, backslash bool) error {
	start := s.i
	s.i++
	for s.i < s.n {
		c := s.src[s.i]
		switch {
		case backslash && c == '\\':
			s.i += 2
		case c == quote && s.peek(1) == quote:
			s.i += 2
		case c == quote:
			s.i++
			return nil
		default:
			s.i++
		}
	}
	if quote == '"' {
		return &SyntaxError{Offset: start, Msg: "unterminated quoted identifier"}
	}
	return &SyntaxError{Offset: start, Msg: "unterminated string literal"}
}

func (s *scanner) consumeLineComment() {
	for s.i < s.n && s.src[s.i] != '\n' {
		s.i++
	}
}

// consumeBlockComment handles nested comments the way PostgreSQL does.
func (s *scanner) consumeBlockComment() error {
	start := s.i
	depth := 0
	for s.i < s.n {
		switch {
		case s.src[s.i] == '/' && s.peek(1) == '*':
			depth++
			s.i += 2
		case s.src[s.i] == '*' && s.peek(1) == '/':
			depth--
			s.i += 2
			if depth == 0 {
				return nil
			}
		default:
			s.i++
		}
	}
	return &SyntaxError{Offset: start, Msg: "unterminated block comment"}
}

// consumeDollar skips a $tag$...$tag$ body. A '$' that does not open a
// tag (positional "$1", a stray dollar) is consumed as a single byte.
func (s *scanner) consumeDollar() error {
	start := s.i
	j := s.i + 1
	if j < s.n && isIdentStart(s.src[j]) {
		for j < s.n && isIdentPart(s.src[j]) {
			j++
		}
	}
	if j >= s.n || s.src[j] != '$' {
		s.i++
		return nil
	}
	tag := s.src[start : j+1]
	idx := strings.Index(s.src[j+1:], tag)
	if idx < 0 {
		return &SyntaxError{Offset: start, Msg: "unterminated dollar-quoted string " + tag}
	}
	s.i = j + 1 + idx + len(tag)
	return nil
}

func (s *scanner) consumeColon() {
	start := s.i
	if s.peek(1) == ':' {
		// cast, as in "created_at::date"
		s.i += 2
		return
	}
	if !isIdentStart(s.peek(1)) {
		s.i++
		return
	}
	s.i++
	for s.i < s.n && isIdentPart(s.src[s.i]) {
		s.i++
	}
	s.add(s.src[start+1:s.i], start)
}

func (s *scanner) add(name string, offset int) {
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.params = append(s.params, Parameter{Name: name, Offset: offset})
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
