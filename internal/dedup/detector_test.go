package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/harborstreet/tally/internal/model"
)

func txn(date string, amount float64, description string) model.Transaction {
	d, _ := time.Parse("2006-01-02", date)
	return model.Transaction{Date: d, Amount: amount, Description: description, Account: "0111"}
}

func TestIsDuplicate(t *testing.T) {
	existing := []model.Transaction{
		txn("2025-01-15", 2500.00, "RENT PAYMENT - TENANT A"),
		txn("2025-01-16", -15.49, "NETFLIX.COM"),
	}
	d := NewDetector(existing)

	tests := []struct {
		name      string
		candidate model.Transaction
		want      bool
	}{
		{"exact match", txn("2025-01-15", 2500.00, "RENT PAYMENT - TENANT A"), true},
		{"case and whitespace insensitive", txn("2025-01-15", 2500.00, "  rent payment - tenant a "), true},
		{"amount within float tolerance", txn("2025-01-15", 2500.005, "RENT PAYMENT - TENANT A"), true},
		{"amount differs past tolerance", txn("2025-01-15", 2500.02, "RENT PAYMENT - TENANT A"), false},
		{"different day", txn("2025-01-14", 2500.00, "RENT PAYMENT - TENANT A"), false},
		{"description is exact match, not substring", txn("2025-01-16", -15.49, "NETFLIX"), false},
		{"same date and amount, distinct description", txn("2025-01-16", -15.49, "HULU.COM"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.IsDuplicate(tt.candidate))
		})
	}
}

func TestEmptyExistingSetNeverMatches(t *testing.T) {
	d := NewDetector(nil)
	assert.False(t, d.IsDuplicate(txn("2025-01-15", 2500.00, "ANYTHING")))
	assert.Empty(t, d.FindDuplicates([]model.Transaction{txn("2025-01-15", 1.00, "A")}))
}

func TestFindDuplicatesReturnsMatchingSubsequence(t *testing.T) {
	existing := []model.Transaction{txn("2025-01-15", -10.00, "COFFEE")}
	d := NewDetector(existing)

	candidates := []model.Transaction{
		txn("2025-01-15", -10.00, "COFFEE"),
		txn("2025-01-15", -11.00, "COFFEE"),
		txn("2025-01-15", -10.00, "coffee"),
	}

	dups := d.FindDuplicates(candidates)
	assert.Len(t, dups, 2)
}

func TestReimportIsFullyDuplicate(t *testing.T) {
	batch := []model.Transaction{
		txn("2025-02-01", -42.17, "MERCHANT ONE"),
		txn("2025-02-02", 1250.00, "TRANSFER TO 8895"),
	}
	d := NewDetector(batch)
	assert.Len(t, d.FindDuplicates(batch), len(batch))
}
