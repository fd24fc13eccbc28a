package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		expected   []string
		supplied   []string
		exhaustive bool
		extra      []string
		missing    []string
	}{
		{"exact match", []string{"id"}, []string{"id"}, true, []string{}, []string{}},
		{"vacuous", nil, nil, true, []string{}, []string{}},
		{"missing one", []string{"id", "name"}, []string{"id"}, true, []string{}, []string{"name"}},
		{"extra one", []string{"id"}, []string{"id", "extra"}, true, []string{"extra"}, []string{}},
		{"both", []string{"a", "b"}, []string{"b", "c"}, true, []string{"c"}, []string{"a"}},
		{"order independent", []string{"b", "a"}, []string{"a", "b"}, true, []string{}, []string{}},
		{"first seen order", []string{"z", "y", "x"}, []string{}, true, []string{}, []string{"z", "y", "x"}},
		{"duplicates collapse", []string{"a", "a"}, []string{"b", "b"}, true, []string{"b"}, []string{"a"}},
		{"case sensitive", []string{"id"}, []string{"Id"}, true, []string{"Id"}, []string{"id"}},
		{"non-exhaustive suppresses missing", []string{"id", "name"}, []string{}, false, []string{}, []string{}},
		{"non-exhaustive keeps extra", []string{"id"}, []string{"typo"}, false, []string{"typo"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.expected, tt.supplied, tt.exhaustive)
			assert.Equal(t, tt.extra, got.Extra)
			assert.Equal(t, tt.missing, got.Missing)
			assert.Equal(t, len(tt.extra) == 0 && len(tt.missing) == 0, got.Empty())
		})
	}
}

// Every name lands in exactly one of: both sets, extra, missing.
func TestReconcilePartitions(t *testing.T) {
	expected := []string{"a", "b", "c", "d"}
	supplied := []string{"c", "d", "e", "f", "a"}
	got := Reconcile(expected, supplied, true)

	inExpected := toSet(expected)
	inSupplied := toSet(supplied)
	for _, n := range got.Extra {
		assert.True(t, inSupplied[n])
		assert.False(t, inExpected[n])
	}
	for _, n := range got.Missing {
		assert.True(t, inExpected[n])
		assert.False(t, inSupplied[n])
	}
	assert.Equal(t, []string{"e", "f"}, got.Extra)
	assert.Equal(t, []string{"b"}, got.Missing)
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
