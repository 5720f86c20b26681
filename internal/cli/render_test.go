package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/harborstreet/tally/internal/importer"
	"github.com/harborstreet/tally/internal/model"
	"github.com/harborstreet/tally/internal/storage"
)

func TestRenderReviewSummary(t *testing.T) {
	out := RenderReviewSummary(&importer.Summary{
		Account:        "0111",
		Total:          10,
		Categorized:    7,
		Duplicates:     2,
		Failed:         1,
		RuleMatched:    5,
		Uncategorized:  1,
		CategoryCounts: map[string]int{"Utilities": 3, "Rental Income": 4},
	})

	assert.Contains(t, out, "account 0111")
	assert.Contains(t, out, "Parsed rows:   10")
	assert.Contains(t, out, "Rule matched:    5")
	assert.Contains(t, out, "Utilities")
	assert.Contains(t, out, "Rental Income")
}

func TestRenderCommitResult(t *testing.T) {
	clean := RenderCommitResult(storage.BatchResult{Success: 5})
	assert.Contains(t, clean, "Committed 5 transactions.")

	partial := RenderCommitResult(storage.BatchResult{Success: 4, Failed: 1})
	assert.Contains(t, partial, "Committed 4 transactions;")
	assert.Contains(t, partial, "1 failed to write.")
}

func TestRenderTransaction(t *testing.T) {
	balance := 950.00
	out := RenderTransaction(&model.Transaction{
		ID:          "abc123",
		Date:        time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Description: "VYVE BROADBAND PAYMENT",
		Account:     "0111",
		Amount:      -89.99,
		Balance:     &balance,
		Type:        "expense",
		Category:    "Utilities",
		SubCategory: "Internet",
		Confidence:  1.0,
		Method:      model.MethodRule,
	})

	assert.Contains(t, out, "VYVE BROADBAND PAYMENT")
	assert.Contains(t, out, "2024-06-03")
	assert.Contains(t, out, "Subcategory: Internet")
	assert.Contains(t, out, "1.00 (rule)")
}

func TestRenderPatterns(t *testing.T) {
	assert.Contains(t, RenderPatterns(nil), "No custom patterns")

	minAmount := 50.0
	out := RenderPatterns([]model.CustomPattern{
		{ID: "p-1", Name: "Coffee", Category: "Other Expenses", Keywords: []string{"espresso"}, AmountMin: &minAmount},
	})
	assert.Contains(t, out, "Coffee")
	assert.Contains(t, out, "espresso")
	assert.Contains(t, out, "50.00..")
}

func TestRenderFailures(t *testing.T) {
	assert.Empty(t, RenderFailures(nil))

	out := RenderFailures([]importer.Failure{
		{Transaction: model.Transaction{Description: "BAD ROW"}, Reason: "transaction amount is not finite: NaN"},
	})
	assert.Contains(t, out, "BAD ROW")
	assert.Contains(t, out, "not finite")
}
