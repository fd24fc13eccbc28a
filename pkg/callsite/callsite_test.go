package callsite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeandaverde/vscode-tinypg/pkg/jsast"
)

func locate(t *testing.T, src string, lang jsast.Language, targets ...string) []CallSite {
	t.Helper()
	tree, err := jsast.NewParser().Parse(context.Background(), []byte(src), lang)
	require.NoError(t, err)
	defer tree.Close()
	return Locate(tree, targets...)
}

func literals(sites []CallSite) []string {
	out := make([]string, len(sites))
	for i, s := range sites {
		out[i] = s.Target + ":" + s.Literal
	}
	return out
}

func TestLocateQualification(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"keyed call", `db.sql("users.find", { id })`, []string{"sql:users.find"}},
		{"inline call", `db.query("SELECT 1", {})`, []string{"query:SELECT 1"}},
		{"template without substitution", "db.query(`SELECT :id`, { id })", []string{"query:SELECT :id"}},
		{"template with substitution", "db.query(`SELECT ${cols}`, { id })", []string{}},
		{"single argument", `db.sql("users.find")`, []string{}},
		{"no arguments", `db.sql()`, []string{}},
		{"comment is not an argument", `db.sql("users.find" /* params */)`, []string{}},
		{"variable key", `db.sql(key, { id })`, []string{}},
		{"bare function call", `sql("users.find", { id })`, []string{}},
		{"other member", `db.exec("users.find", { id })`, []string{}},
		{"computed member", `db["sql"]("users.find", { id })`, []string{}},
		{"tagged template", "db.sql`SELECT 1`", []string{}},
		{"chained receiver", `ctx.db.tx().sql("a.b", p)`, []string{"sql:a.b"}},
		{"optional chain", `db?.query("SELECT 1", {})`, []string{"query:SELECT 1"}},
		{"dynamic params still located", `db.sql("a.b", params)`, []string{"sql:a.b"}},
		{"three arguments", `db.sql("a.b", { id }, opts)`, []string{"sql:a.b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sites := locate(t, tt.src, jsast.JavaScript, "sql", "query")
			assert.Equal(t, tt.want, literals(sites))
		})
	}
}

func TestLocateRecursesEverywhere(t *testing.T) {
	src := `
export class Repo {
  async find(id) {
    return this.db.sql("users.find", { id })
  }
}
const handlers = {
  list: async () => db.query("SELECT * FROM t WHERE a = :a", { a: 1 }),
  nested() {
    return function inner() {
      return db.sql("users.outer", { x: db.sql("users.inner", { y }) })
    }
  },
}
`
	sites := locate(t, src, jsast.JavaScript, "sql", "query")
	assert.Equal(t, []string{
		"sql:users.find",
		"query:SELECT * FROM t WHERE a = :a",
		"sql:users.outer",
		"sql:users.inner",
	}, literals(sites))
}

func TestLocateTargetsFilter(t *testing.T) {
	src := `db.sql("a.b", {}); db.query("SELECT 1", {})`
	assert.Equal(t, []string{"sql:a.b"}, literals(locate(t, src, jsast.JavaScript, "sql")))
	assert.Empty(t, locate(t, src, jsast.JavaScript))
}

func TestLocateTypeScript(t *testing.T) {
	src := `
async function load(db: Db, id: number): Promise<User[]> {
  const params = { id } as const
  await db.sql<User>("users.find", { id } satisfies Params)
  return db.query<User>("SELECT * FROM u WHERE id = :id", params)
}
`
	sites := locate(t, src, jsast.TypeScript, "sql", "query")
	require.Len(t, sites, 2)
	require.NotNil(t, sites[0].Params)
	assert.Equal(t, []string{"id"}, sites[0].Params.Names)
	assert.Nil(t, sites[1].Params)
}

func TestLocateAwaitedGenericCall(t *testing.T) {
	src := `async () => { await db.sql<User>("users.find", { id }); await (db.query<Row[]>("SELECT 1", {})) }`
	sites := locate(t, src, jsast.TypeScript, "sql", "query")
	assert.Equal(t, []string{"sql:users.find", "query:SELECT 1"}, literals(sites))
	require.NotNil(t, sites[0].Params)
	assert.Equal(t, []string{"id"}, sites[0].Params.Names)
}

func TestExtractParams(t *testing.T) {
	tests := []struct {
		name       string
		params     string
		names      []string
		exhaustive bool
	}{
		{"empty", `{}`, []string{}, true},
		{"pairs", `{ id: 1, name: "x" }`, []string{"id", "name"}, true},
		{"shorthand", `{ id, name }`, []string{"id", "name"}, true},
		{"string and number keys", `{ "user_id": 1, 'b': 2, 3: 4 }`, []string{"user_id", "b", "3"}, true},
		{"duplicate keys", `{ id: 1, id: 2 }`, []string{"id"}, true},
		{"method", `{ id() { return 1 } }`, []string{"id"}, true},
		{"comment", `{ id /* primary */, // trailing
		  name }`, []string{"id", "name"}, true},
		{"spread", `{ ...params }`, []string{}, false},
		{"spread with visible names", `{ ...params, extra: 1 }`, []string{"extra"}, false},
		{"computed key", `{ [key]: 1, id }`, []string{"id"}, false},
		{"computed method", `{ [key]() {} }`, []string{}, false},
		{"case sensitive", `{ Id: 1, id: 2 }`, []string{"Id", "id"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sites := locate(t, `db.sql("a.b", `+tt.params+`)`, jsast.JavaScript, "sql")
			require.Len(t, sites, 1)
			p := sites[0].Params
			require.NotNil(t, p)
			assert.Equal(t, tt.names, p.Names)
			assert.Equal(t, tt.exhaustive, p.Exhaustive)
		})
	}
}

func TestSpans(t *testing.T) {
	src := "const r = db.sql(\n  'users.find',\n  { id: 1 }\n)"
	sites := locate(t, src, jsast.JavaScript, "sql")
	require.Len(t, sites, 1)
	site := sites[0]

	assert.Equal(t, 2, site.KeySpan.Start.Line)
	assert.Equal(t, 3, site.KeySpan.Start.Column)
	assert.Equal(t, `'users.find'`, src[site.KeySpan.Start.Offset:site.KeySpan.End.Offset])

	require.NotNil(t, site.Params)
	assert.Equal(t, 3, site.Params.Span.Start.Line)
	assert.Equal(t, `{ id: 1 }`, src[site.Params.Span.Start.Offset:site.Params.Span.End.Offset])

	assert.Equal(t, 1, site.CallSpan.Start.Line)
	assert.Equal(t, 11, site.CallSpan.Start.Column)
	assert.True(t, site.Params.Has("id"))
	assert.False(t, site.Params.Has("ID"))
}
