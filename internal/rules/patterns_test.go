package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborstreet/tally/internal/model"
)

func TestNewPatternStampsIDAndCreatedAt(t *testing.T) {
	p := NewPattern(model.CustomPattern{Name: "test", Keywords: []string{"x"}, Category: "Other Expenses"})
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestExportRoundTrip(t *testing.T) {
	patterns := []model.CustomPattern{
		NewPattern(model.CustomPattern{Name: "gym", Keywords: []string{"iron works"}, Category: "Healthcare"}),
	}

	data, err := ExportPatterns(patterns)
	require.NoError(t, err)

	export, err := ParseExport(data)
	require.NoError(t, err)
	assert.Equal(t, model.PatternExportVersion, export.Version)
	require.Len(t, export.Patterns, 1)
	assert.Equal(t, "gym", export.Patterns[0].Name)
}

func TestParseExportRejectsUnknownVersion(t *testing.T) {
	_, err := ParseExport([]byte(`{"version": 99, "patterns": []}`))
	assert.Error(t, err)
}

func TestMergePatternsAppends(t *testing.T) {
	existing := []model.CustomPattern{{ID: "a", Name: "keep", CreatedAt: time.Now()}}
	imported := []model.CustomPattern{
		{ID: "a", Name: "collides"}, // id collision gets a fresh id
		{Name: "no id"},
		{ID: "b", Name: "clean", CreatedAt: time.Now()},
	}

	merged := MergePatterns(existing, imported)
	require.Len(t, merged, 4)

	// Import appends, never replaces.
	assert.Equal(t, "keep", merged[0].Name)

	ids := make(map[string]bool)
	for _, p := range merged {
		assert.NotEmpty(t, p.ID)
		assert.False(t, ids[p.ID], "duplicate id after merge")
		assert.False(t, p.CreatedAt.IsZero())
		ids[p.ID] = true
	}
}
