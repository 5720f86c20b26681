package model

import "time"

// CustomPattern is a user-authored matching rule, persisted across sessions.
// A pattern matches when all of its configured constraints hold; keywords
// OR-match against the lowercased description, amount bounds are inclusive
// and enforced independently, and account must match exactly when set.
type CustomPattern struct {
	CreatedAt time.Time `json:"created_at"`
	AmountMin *float64  `json:"amount_min,omitempty"`
	AmountMax *float64  `json:"amount_max,omitempty"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Account   string    `json:"account,omitempty"`
	Property  string    `json:"property,omitempty"`
	Entity    string    `json:"entity,omitempty"`
	Keywords  []string  `json:"keywords"`
}

// PatternExport is the on-disk format for pattern backup files. Importing
// an export appends to the existing list rather than replacing it.
type PatternExport struct {
	ExportedAt time.Time       `json:"exported_at"`
	Patterns   []CustomPattern `json:"patterns"`
	Version    int             `json:"version"`
}

// PatternExportVersion is the current export file format version.
const PatternExportVersion = 1
