package binding

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeandaverde/vscode-tinypg/pkg/callsite"
	"github.com/joeandaverde/vscode-tinypg/pkg/core"
	"github.com/joeandaverde/vscode-tinypg/pkg/jsast"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
)

// memFiles is an in-memory FileLocator keyed by relative path.
type memFiles struct {
	files   map[string]string
	readErr error
	finds   []string
}

func (m *memFiles) Find(_ context.Context, rel string) (string, bool, error) {
	m.finds = append(m.finds, rel)
	if _, ok := m.files[rel]; ok {
		return "/ws/" + rel, true, nil
	}
	return "", false, nil
}

func (m *memFiles) ReadFile(_ context.Context, path string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return []byte(m.files[path[len("/ws/"):]]), nil
}

func sitesOf(t *testing.T, src string, targets ...string) []callsite.CallSite {
	t.Helper()
	tree, err := jsast.NewParser().Parse(context.Background(), []byte(src), jsast.JavaScript)
	require.NoError(t, err)
	defer tree.Close()
	return callsite.Locate(tree, targets...)
}

func run(t *testing.T, r Resolver, src string) []lint.Diagnostic {
	t.Helper()
	var diags []lint.Diagnostic
	for _, site := range sitesOf(t, src, "sql", "query") {
		out, err := Check(context.Background(), r, site)
		require.NoError(t, err)
		diags = append(diags, Format(out)...)
	}
	return diags
}

func TestScenarioInlineSatisfied(t *testing.T) {
	diags := run(t, InlineResolver{}, `db.query("SELECT * FROM t WHERE id = :id", { id: 1 })`)
	assert.Empty(t, diags)
}

func TestScenarioInlineMissing(t *testing.T) {
	diags := run(t, InlineResolver{}, `db.query("SELECT * FROM t WHERE id = :id AND name = :name", { id: 1 })`)
	require.Len(t, diags, 1)
	assert.Equal(t, lint.SeverityError, diags[0].Severity)
	assert.Equal(t, "PB01", diags[0].RuleID)
	assert.Equal(t, core.CategoryQueryParams, diags[0].Category)
	assert.Equal(t, []string{"name"}, diags[0].Names)
	assert.Equal(t, "Missing parameter: name", diags[0].Message)
}

func TestScenarioInlineUnused(t *testing.T) {
	diags := run(t, InlineResolver{}, `db.query("SELECT * FROM t WHERE id = :id", { id: 1, extra: 2 })`)
	require.Len(t, diags, 1)
	assert.Equal(t, lint.SeverityWarning, diags[0].Severity)
	assert.Equal(t, "PB02", diags[0].RuleID)
	assert.Equal(t, []string{"extra"}, diags[0].Names)
	assert.Equal(t, "Unused parameter: extra", diags[0].Message)
}

func TestScenarioKeyedNotFound(t *testing.T) {
	src := `db.sql("users.findById", { id: 1 })`
	files := &memFiles{files: map[string]string{}}
	diags := run(t, KeyedResolver{Files: files}, src)

	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "TP01", d.RuleID)
	assert.Equal(t, lint.SeverityError, d.Severity)
	assert.Equal(t, core.CategoryTargetMissing, d.Category)
	assert.Equal(t, `SQL file not found for key "users.findById" (looked for users/findById.sql)`, d.Message)
	assert.Equal(t, []string{"users/findById.sql"}, files.finds)

	// anchored at the key argument, not the object literal
	assert.Equal(t, `"users.findById"`, src[d.Pos.Offset:d.EndPos.Offset])
}

func TestScenarioKeyedSpread(t *testing.T) {
	files := &memFiles{files: map[string]string{
		"users/findById.sql": "SELECT * FROM users WHERE id = :id",
	}}
	diags := run(t, KeyedResolver{Files: files}, `db.sql("users.findById", { ...params })`)
	assert.Empty(t, diags)
}

func TestKeyedParams(t *testing.T) {
	files := &memFiles{files: map[string]string{
		"users/search.sql": "SELECT * FROM users WHERE org = :org AND name ILIKE :q AND role = :role",
	}}
	src := `db.sql("users.search", { org, limit: 10, offset: 0 })`
	diags := run(t, KeyedResolver{Files: files}, src)

	require.Len(t, diags, 2)
	assert.Equal(t, "Missing parameters: q, role", diags[0].Message)
	assert.Equal(t, lint.SeverityError, diags[0].Severity)
	assert.Equal(t, "Unused parameters: limit, offset", diags[1].Message)
	assert.Equal(t, lint.SeverityWarning, diags[1].Severity)
	for _, d := range diags {
		assert.Equal(t, core.CategoryFileParams, d.Category)
		assert.Equal(t, "/ws/users/search.sql", d.Path)
		assert.Equal(t, `{ org, limit: 10, offset: 0 }`, src[d.Pos.Offset:d.EndPos.Offset])
	}
}

func TestDynamicParamsSkipped(t *testing.T) {
	files := &memFiles{files: map[string]string{}}
	assert.Empty(t, run(t, KeyedResolver{Files: files}, `db.sql("users.gone", params)`))
	assert.Empty(t, run(t, InlineResolver{}, `db.query("SELECT 'open", params)`))

	site := callsite.CallSite{Target: "sql", Literal: "users.gone"}
	out, err := Check(context.Background(), KeyedResolver{Files: files}, site)
	require.NoError(t, err)
	assert.Nil(t, out.Expected)
	assert.NoError(t, out.Err)
	assert.False(t, out.Reconciled)
}

func TestParseFailures(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		diags := run(t, InlineResolver{}, `db.query("SELECT 'open WHERE id = :id", { id })`)
		require.Len(t, diags, 1)
		assert.Equal(t, "TP02", diags[0].RuleID)
		assert.Equal(t, core.CategoryQueryParams, diags[0].Category)
		assert.Contains(t, diags[0].Message, "Unable to parse SQL: unterminated string literal")
	})

	t.Run("keyed", func(t *testing.T) {
		files := &memFiles{files: map[string]string{"bad.sql": "SELECT /* :id"}}
		diags := run(t, KeyedResolver{Files: files}, `db.sql("bad", { id })`)
		require.Len(t, diags, 1)
		assert.Equal(t, "TP02", diags[0].RuleID)
		assert.Equal(t, core.CategoryTargetMissing, diags[0].Category)
		assert.Contains(t, diags[0].Message, "Unable to parse SQL file /ws/bad.sql")
		assert.NotContains(t, diags[0].Message, "not found")
	})

	t.Run("parser panic", func(t *testing.T) {
		r := InlineResolver{Parse: func(string) ([]string, error) { panic("boom") }}
		diags := run(t, r, `db.query("SELECT 1", {})`)
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "sql parser panic: boom")
	})
}

func TestReadFailure(t *testing.T) {
	files := &memFiles{files: map[string]string{"a/b.sql": ""}, readErr: os.ErrPermission}
	diags := run(t, KeyedResolver{Files: files}, `db.sql("a.b", {})`)
	require.Len(t, diags, 1)
	assert.Equal(t, "TP01", diags[0].RuleID)
	assert.Contains(t, diags[0].Message, "Unable to read SQL file a/b.sql")
}

func TestVacuousBinding(t *testing.T) {
	files := &memFiles{files: map[string]string{"health/ping.sql": "SELECT 1"}}
	assert.Empty(t, run(t, KeyedResolver{Files: files}, `db.sql("health.ping", {})`))
	assert.Empty(t, run(t, InlineResolver{}, `db.query("SELECT 1", {})`))
}

func TestCheckContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	site := callsite.CallSite{Literal: "SELECT :a", Params: &callsite.ParamLiteral{Exhaustive: true}}
	_, err := Check(ctx, InlineResolver{}, site)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestErrorsMatchSentinels(t *testing.T) {
	var err error = &TargetNotFoundError{Key: "a.b", Path: "a/b.sql"}
	assert.True(t, errors.Is(err, ErrTargetNotFound))
	assert.False(t, errors.Is(err, ErrSQLParse))
	assert.Equal(t, `no file a/b.sql for key "a.b"`, err.Error())

	err = &SQLParseError{Err: errors.New("bad")}
	assert.True(t, errors.Is(err, ErrSQLParse))
	assert.Equal(t, "parse inline sql: bad", err.Error())
}

func TestKeyPath(t *testing.T) {
	assert.Equal(t, "users/findById.sql", KeyPath("users.findById", ""))
	assert.Equal(t, "a/b/c.sql", KeyPath("a.b.c", ".sql"))
	assert.Equal(t, "top.pgsql", KeyPath("top", "pgsql"))
}

func TestFormatIdempotent(t *testing.T) {
	src := `
db.query("SELECT :a, :b", { b, c })
db.query("SELECT :x", { x })
`
	first := run(t, InlineResolver{}, src)
	second := run(t, InlineResolver{}, src)
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "PB01", first[0].RuleID)
	assert.Equal(t, "PB02", first[1].RuleID)
}
