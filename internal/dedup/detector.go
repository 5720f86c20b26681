// Package dedup decides whether candidate transactions already exist in
// the store. The predicate is deliberately conservative: bank re-exports
// commonly overlap date ranges, and suppressing a legitimately distinct
// transaction is worse than importing an occasional duplicate twice.
package dedup

import (
	"math"
	"strings"

	"github.com/harborstreet/tally/internal/model"
)

// amountTolerance guards against floating-point drift between parses of
// the same value; it is not a fuzzy near-amount match.
const amountTolerance = 0.01

// Detector checks candidates against a reference set of stored transactions.
type Detector struct {
	existing []model.Transaction
}

// NewDetector creates a detector over the given reference set. An empty
// set never flags anything: a first import is duplicate-free by definition.
func NewDetector(existing []model.Transaction) *Detector {
	return &Detector{existing: existing}
}

// IsDuplicate reports whether the candidate matches at least one existing
// record on calendar date, amount (within tolerance), and description
// (case-insensitive, whitespace-trimmed, exact).
func (d *Detector) IsDuplicate(candidate model.Transaction) bool {
	for _, existing := range d.existing {
		if sameDay(candidate, existing) &&
			math.Abs(candidate.Amount-existing.Amount) < amountTolerance &&
			sameDescription(candidate.Description, existing.Description) {
			return true
		}
	}
	return false
}

// FindDuplicates returns the subsequence of candidates that match an
// existing record.
func (d *Detector) FindDuplicates(candidates []model.Transaction) []model.Transaction {
	var duplicates []model.Transaction
	for _, candidate := range candidates {
		if d.IsDuplicate(candidate) {
			duplicates = append(duplicates, candidate)
		}
	}
	return duplicates
}

func sameDay(a, b model.Transaction) bool {
	return a.Date.Format("2006-01-02") == b.Date.Format("2006-01-02")
}

func sameDescription(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
