package callsite

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/joeandaverde/vscode-tinypg/pkg/jsast"
	"github.com/joeandaverde/vscode-tinypg/pkg/token"
)

// CallSite is one located invocation. It holds no tree references and
// stays valid after the tree is closed.
type CallSite struct {
	// Target is the member name that matched, e.g. "sql" or "query".
	Target string
	// Literal is the decoded text of the first argument.
	Literal string
	// KeySpan covers the first argument, quotes included.
	KeySpan token.Span
	// CallSpan covers the whole call expression.
	CallSpan token.Span
	// Params describes the second argument when it is an object literal.
	// Nil means the argument is dynamic and cannot be checked.
	Params *ParamLiteral
}

// ParamLiteral is the set of names visible in an object-literal argument.
type ParamLiteral struct {
	// Names are distinct property names in source order.
	Names []string
	// Exhaustive is false when a spread or computed key hides part of the set.
	Exhaustive bool
	// Span covers the object literal, braces included.
	Span token.Span
}

// Has reports whether name is one of the visible property names.
func (p *ParamLiteral) Has(name string) bool {
	for _, n := range p.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Locate walks the tree in pre-order and returns every qualifying call
// whose member name is in targets. An enclosing call is reported before
// calls nested in its arguments.
func Locate(tree *jsast.Tree, targets ...string) []CallSite {
	if tree == nil || len(targets) == 0 {
		return nil
	}
	want := make(map[string]bool, len(targets))
	for _, name := range targets {
		want[name] = true
	}

	var sites []CallSite
	src := tree.Source

	stack := make([]*sitter.Node, 0, 64)
	stack = append(stack, tree.Root())
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.Type() == jsast.NodeCallExpression {
			if site, ok := match(node, src, want); ok {
				sites = append(sites, site)
			}
		}

		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			if child := node.Child(i); child != nil {
				stack = append(stack, child)
			}
		}
	}
	return sites
}

func match(call *sitter.Node, src []byte, want map[string]bool) (CallSite, bool) {
	name, ok := memberName(call, src)
	if !ok || !want[name] {
		return CallSite{}, false
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != jsast.NodeArguments {
		// tagged templates put a template_string here
		return CallSite{}, false
	}
	ex, ok := Extract(args, src)
	if !ok {
		return CallSite{}, false
	}
	return CallSite{
		Target:   name,
		Literal:  ex.Literal,
		KeySpan:  ex.KeySpan,
		CallSpan: jsast.Span(call),
		Params:   ex.Params,
	}, true
}

// memberName returns the accessed property of a member-expression callee.
func memberName(call *sitter.Node, src []byte) (string, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}
	fn = jsast.Unwrap(fn)
	// The TypeScript grammar reads `await x.m<T>(...)` as a call whose
	// callee is the await expression.
	if fn.Type() == jsast.NodeAwaitExpression && call.ChildByFieldName("type_arguments") != nil {
		if inner := fn.NamedChild(0); inner != nil {
			fn = jsast.Unwrap(inner)
		}
	}
	if fn.Type() != jsast.NodeMemberExpression {
		return "", false
	}
	prop := fn.ChildByFieldName("property")
	if prop == nil {
		return "", false
	}
	switch prop.Type() {
	case jsast.NodePropertyIdentifier, jsast.NodePrivatePropertyIdent:
		return jsast.Text(prop, src), true
	default:
		return "", false
	}
}
