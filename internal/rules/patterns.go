package rules

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborstreet/tally/internal/model"
)

// NewPattern stamps a user-authored pattern with a generated id and
// creation time.
func NewPattern(pattern model.CustomPattern) model.CustomPattern {
	pattern.ID = uuid.NewString()
	pattern.CreatedAt = time.Now().UTC()
	return pattern
}

// ExportPatterns serializes the pattern list into the versioned backup
// format.
func ExportPatterns(patterns []model.CustomPattern) ([]byte, error) {
	export := model.PatternExport{
		Version:    model.PatternExportVersion,
		ExportedAt: time.Now().UTC(),
		Patterns:   patterns,
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pattern export: %w", err)
	}
	return data, nil
}

// ParseExport decodes a pattern backup file.
func ParseExport(data []byte) (*model.PatternExport, error) {
	var export model.PatternExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse pattern export: %w", err)
	}
	if export.Version != model.PatternExportVersion {
		return nil, fmt.Errorf("unsupported pattern export version %d", export.Version)
	}
	return &export, nil
}

// MergePatterns appends imported patterns to the existing list. The merge
// is non-destructive: existing patterns are never removed or replaced, and
// imported patterns whose ids are missing or collide get fresh ones.
func MergePatterns(existing, imported []model.CustomPattern) []model.CustomPattern {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.ID] = true
	}

	merged := make([]model.CustomPattern, 0, len(existing)+len(imported))
	merged = append(merged, existing...)
	for _, p := range imported {
		if p.ID == "" || seen[p.ID] {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		seen[p.ID] = true
		merged = append(merged, p)
	}
	return merged
}
