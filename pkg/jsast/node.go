package jsast

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/joeandaverde/vscode-tinypg/pkg/token"
)

// Position returns the 1-based start position of n.
func Position(n *sitter.Node) token.Position {
	p := n.StartPoint()
	return token.Position{
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
		Offset: int(n.StartByte()),
	}
}

// Span returns the source range covered by n.
func Span(n *sitter.Node) token.Span {
	end := n.EndPoint()
	return token.Span{
		Start: Position(n),
		End: token.Position{
			Line:   int(end.Row) + 1,
			Column: int(end.Column) + 1,
			Offset: int(n.EndByte()),
		},
	}
}

// Text returns the raw source of n.
func Text(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

// Unwrap strips parentheses and TypeScript "as" / "satisfies" wrappers.
func Unwrap(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case NodeParenthesizedExpression, NodeAsExpression, NodeSatisfiesExpression:
			inner := n.NamedChild(0)
			if inner == nil {
				return n
			}
			n = inner
		default:
			return n
		}
	}
	return n
}

// StringValue decodes a string literal or a template literal without
// substitutions. ok is false for any other node.
func StringValue(n *sitter.Node, src []byte) (value string, ok bool) {
	switch n.Type() {
	case NodeString:
	case NodeTemplateString:
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if n.NamedChild(i).Type() == NodeTemplateSubstitution {
				return "", false
			}
		}
	default:
		return "", false
	}
	raw := Text(n, src)
	if len(raw) < 2 {
		return "", false
	}
	return decodeEscapes(raw[1 : len(raw)-1]), true
}

// decodeEscapes resolves JavaScript escape sequences. Malformed escapes
// are kept verbatim.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			if r, ok := parseHex(s, i+1, 2); ok {
				b.WriteRune(r)
				i += 2
			} else {
				b.WriteString(`\x`)
			}
		case 'u':
			if i+1 < len(s) && s[i+1] == '{' {
				end := strings.IndexByte(s[i+1:], '}')
				if end > 1 {
					if r, ok := parseHex(s, i+2, end-1); ok {
						b.WriteRune(r)
						i += end + 1
						continue
					}
				}
				b.WriteString(`\u`)
			} else if r, ok := parseHex(s, i+1, 4); ok {
				b.WriteRune(r)
				i += 4
			} else {
				b.WriteString(`\u`)
			}
		default:
			b.WriteByte(e)
		}
	}
	return b.String()
}

func parseHex(s string, start, n int) (rune, bool) {
	if start+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[start:start+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
