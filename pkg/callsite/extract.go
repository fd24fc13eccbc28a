package callsite

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/joeandaverde/vscode-tinypg/pkg/jsast"
	"github.com/joeandaverde/vscode-tinypg/pkg/token"
)

// Extraction is what Extract reads from an argument list.
type Extraction struct {
	Literal string
	KeySpan token.Span
	Params  *ParamLiteral
}

// Extract reads the literal first argument and the object-literal second
// argument of an "arguments" node. ok is false when there are fewer than
// two arguments or the first is not a static string.
func Extract(args *sitter.Node, src []byte) (Extraction, bool) {
	list := arguments(args)
	if len(list) < 2 {
		return Extraction{}, false
	}
	literal, ok := jsast.StringValue(list[0], src)
	if !ok {
		return Extraction{}, false
	}
	ex := Extraction{
		Literal: literal,
		KeySpan: jsast.Span(list[0]),
	}
	if obj := jsast.Unwrap(list[1]); obj.Type() == jsast.NodeObject {
		ex.Params = ExtractParams(obj, src)
	}
	return ex, true
}

func arguments(args *sitter.Node) []*sitter.Node {
	list := make([]*sitter.Node, 0, int(args.NamedChildCount()))
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == jsast.NodeComment {
			continue
		}
		list = append(list, arg)
	}
	return list
}

// ExtractParams collects the statically visible property names of an
// object literal.
func ExtractParams(obj *sitter.Node, src []byte) *ParamLiteral {
	p := &ParamLiteral{
		Names:      []string{},
		Exhaustive: true,
		Span:       jsast.Span(obj),
	}
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			p.Names = append(p.Names, name)
		}
	}

	for i := 0; i < int(obj.NamedChildCount()); i++ {
		prop := obj.NamedChild(i)
		switch prop.Type() {
		case jsast.NodeComment:
		case jsast.NodeShorthandProperty:
			add(jsast.Text(prop, src))
		case jsast.NodePair:
			if name, ok := keyName(prop.ChildByFieldName("key"), src); ok {
				add(name)
			} else {
				p.Exhaustive = false
			}
		case jsast.NodeMethodDefinition:
			if name, ok := keyName(prop.ChildByFieldName("name"), src); ok {
				add(name)
			} else {
				p.Exhaustive = false
			}
		default:
			// spread_element, and anything tree-sitter could not parse
			p.Exhaustive = false
		}
	}
	return p
}

// keyName resolves a static property key. Computed keys are not static.
func keyName(key *sitter.Node, src []byte) (string, bool) {
	if key == nil {
		return "", false
	}
	switch key.Type() {
	case jsast.NodePropertyIdentifier, jsast.NodeNumber:
		return jsast.Text(key, src), true
	case jsast.NodeString:
		return jsast.StringValue(key, src)
	default:
		return "", false
	}
}
