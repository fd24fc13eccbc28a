package jsast

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstOfType(n *sitter.Node, typ string) *sitter.Node {
	if n.Type() == typ {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstOfType(n.Child(i), typ); found != nil {
			return found
		}
	}
	return nil
}

func parse(t *testing.T, src string, lang Language) *Tree {
	t.Helper()
	tree, err := NewParser().Parse(context.Background(), []byte(src), lang)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
		ok   bool
	}{
		{"src/db.js", JavaScript, true},
		{"src/db.MJS", JavaScript, true},
		{"src/db.cjs", JavaScript, true},
		{"src/view.jsx", JavaScript, true},
		{"src/db.ts", TypeScript, true},
		{"src/db.mts", TypeScript, true},
		{"src/view.tsx", TSX, true},
		{"sql/users/find.sql", "", false},
		{"Makefile", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := LanguageForPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	ctx := context.Background()

	_, err := NewParser(WithMaxFileSize(4)).Parse(ctx, []byte("const x = 1"), JavaScript)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = NewParser().Parse(ctx, []byte{0xff, 0xfe}, JavaScript)
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = NewParser().Parse(ctx, []byte("x"), Language("cobol"))
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewParser().Parse(canceled, []byte("x"), JavaScript)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTypeScript(t *testing.T) {
	tree := parse(t, `async function load(): Promise<User[]> { return await db.query<User>("SELECT 1", {} as Params); }`, TypeScript)
	assert.False(t, tree.HasErrors())
	call := firstOfType(tree.Root(), NodeCallExpression)
	require.NotNil(t, call)
	require.NotNil(t, call.ChildByFieldName("type_arguments"))
	fn := call.ChildByFieldName("function")
	require.Equal(t, NodeAwaitExpression, fn.Type())
	assert.Equal(t, NodeMemberExpression, fn.NamedChild(0).Type())
}

func TestParseTSX(t *testing.T) {
	tree := parse(t, `const el = <Row onClick={() => db.sql("a.b", { id })} />;`, TSX)
	assert.NotNil(t, firstOfType(tree.Root(), NodeCallExpression))
}

func TestStringValue(t *testing.T) {
	tests := []struct {
		name string
		src  string
		typ  string
		want string
		ok   bool
	}{
		{"double quoted", `f("users.find")`, NodeString, "users.find", true},
		{"single quoted", `f('a\'b')`, NodeString, "a'b", true},
		{"empty", `f("")`, NodeString, "", true},
		{"plain template", "f(`SELECT :id`)", NodeTemplateString, "SELECT :id", true},
		{"multiline template", "f(`SELECT *\nFROM t`)", NodeTemplateString, "SELECT *\nFROM t", true},
		{"template with substitution", "f(`SELECT ${x}`)", NodeTemplateString, "", false},
		{"not a literal", `f(key)`, "identifier", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.src, JavaScript)
			args := firstOfType(tree.Root(), NodeArguments)
			require.NotNil(t, args)
			arg := args.NamedChild(0)
			require.Equal(t, tt.typ, arg.Type())

			got, ok := StringValue(arg, tree.Source)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnwrap(t *testing.T) {
	tree := parse(t, `f(({ id: 1 } satisfies P) as Q)`, TypeScript)
	args := firstOfType(tree.Root(), NodeArguments)
	require.NotNil(t, args)
	assert.Equal(t, NodeObject, Unwrap(args.NamedChild(0)).Type())
}

func TestSpan(t *testing.T) {
	tree := parse(t, "x\n  f(\"k\")", JavaScript)
	str := firstOfType(tree.Root(), NodeString)
	require.NotNil(t, str)

	span := Span(str)
	assert.Equal(t, 2, span.Start.Line)
	assert.Equal(t, 5, span.Start.Column)
	assert.Equal(t, 6, span.Start.Offset)
	assert.Equal(t, 9, span.End.Offset)
	assert.Equal(t, 3, span.Len())
	assert.Equal(t, `"k"`, Text(str, tree.Source))
}

func TestDecodeEscapes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`tab\there`, "tab\there"},
		{`\x41B\u{43}`, "ABC"},
		{`\u{1F600}`, "\U0001F600"},
		{"line\\\ncontinued", "linecontinued"},
		{`\q`, "q"},
		{`\xZZ`, `\xZZ`},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, decodeEscapes(tt.in), tt.in)
	}
}
