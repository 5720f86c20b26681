package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harborstreet/tally/internal/importer"
	"github.com/harborstreet/tally/internal/model"
	"github.com/harborstreet/tally/internal/storage"
)

// FormatAmount renders a signed dollar amount with color by sign.
func FormatAmount(amount float64) string {
	text := fmt.Sprintf("$%.2f", amount)
	if amount >= 0 {
		return AmountPositiveStyle.Render(text)
	}
	return AmountNegativeStyle.Render(text)
}

// RenderReviewSummary builds the review screen shown after an upload.
func RenderReviewSummary(summary *importer.Summary) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Import Review — account %s", summary.Account)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Parsed rows:   %d\n", summary.Total))
	b.WriteString(fmt.Sprintf("  Categorized:   %s\n", SuccessStyle.Render(fmt.Sprintf("%d", summary.Categorized))))
	if summary.Duplicates > 0 {
		b.WriteString(fmt.Sprintf("  Duplicates:    %s\n", WarningStyle.Render(fmt.Sprintf("%d", summary.Duplicates))))
	} else {
		b.WriteString(fmt.Sprintf("  Duplicates:    %d\n", summary.Duplicates))
	}
	if summary.Failed > 0 {
		b.WriteString(fmt.Sprintf("  Failed:        %s\n", ErrorStyle.Render(fmt.Sprintf("%d", summary.Failed))))
	}

	b.WriteString("\n")
	b.WriteString(BoldStyle.Render("Classification"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Rule matched:    %d\n", summary.RuleMatched))
	b.WriteString(fmt.Sprintf("  AI suggested:    %d\n", summary.AISuggested))
	b.WriteString(fmt.Sprintf("  Low confidence:  %d\n", summary.LowConfidence))
	b.WriteString(fmt.Sprintf("  Uncategorized:   %d\n", summary.Uncategorized))

	if len(summary.CategoryCounts) > 0 {
		b.WriteString("\n")
		b.WriteString(BoldStyle.Render("Categories"))
		b.WriteString("\n")
		names := make([]string, 0, len(summary.CategoryCounts))
		for name := range summary.CategoryCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("  %-24s %d\n", name, summary.CategoryCounts[name]))
		}
	}
	return b.String()
}

// RenderCommitResult summarizes a confirmed batch.
func RenderCommitResult(result storage.BatchResult) string {
	if result.Failed == 0 {
		return SuccessStyle.Render(fmt.Sprintf("Committed %d transactions.", result.Success))
	}
	return fmt.Sprintf("%s %s",
		SuccessStyle.Render(fmt.Sprintf("Committed %d transactions;", result.Success)),
		ErrorStyle.Render(fmt.Sprintf("%d failed to write.", result.Failed)))
}

// RenderFailures lists the rows that were set aside, with reasons.
func RenderFailures(failures []importer.Failure) string {
	if len(failures) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(ErrorStyle.Render("Rejected rows"))
	b.WriteString("\n")
	for _, f := range failures {
		desc := f.Transaction.Description
		if desc == "" {
			desc = "(no description)"
		}
		b.WriteString(fmt.Sprintf("  %s: %s\n", desc, SubtleStyle.Render(f.Reason)))
	}
	return b.String()
}

// RenderTransaction shows one committed transaction in detail.
func RenderTransaction(txn *model.Transaction) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(txn.Description))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  ID:          %s\n", SubtleStyle.Render(txn.ID)))
	b.WriteString(fmt.Sprintf("  Date:        %s\n", txn.Date.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("  Account:     %s\n", txn.Account))
	b.WriteString(fmt.Sprintf("  Amount:      %s\n", FormatAmount(txn.Amount)))
	if txn.Balance != nil {
		b.WriteString(fmt.Sprintf("  Balance:     $%.2f\n", *txn.Balance))
	}
	b.WriteString(fmt.Sprintf("  Type:        %s\n", txn.Type))
	b.WriteString(fmt.Sprintf("  Category:    %s\n", txn.Category))
	if txn.SubCategory != "" {
		b.WriteString(fmt.Sprintf("  Subcategory: %s\n", txn.SubCategory))
	}
	if txn.Property != "" {
		b.WriteString(fmt.Sprintf("  Property:    %s\n", txn.Property))
	}
	if txn.Entity != "" {
		b.WriteString(fmt.Sprintf("  Entity:      %s\n", txn.Entity))
	}
	b.WriteString(fmt.Sprintf("  Confidence:  %.2f (%s)\n", txn.Confidence, txn.Method))
	if txn.Reasoning != "" {
		b.WriteString(fmt.Sprintf("  Reasoning:   %s\n", SubtleStyle.Render(txn.Reasoning)))
	}
	return b.String()
}

// RenderPatterns lists custom patterns in insertion order.
func RenderPatterns(patterns []model.CustomPattern) string {
	if len(patterns) == 0 {
		return SubtleStyle.Render("No custom patterns defined.")
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Custom Patterns"))
	b.WriteString("\n")
	for i, p := range patterns {
		b.WriteString(fmt.Sprintf("%2d. %s %s\n", i+1, BoldStyle.Render(p.Name), SubtleStyle.Render("("+p.ID+")")))
		b.WriteString(fmt.Sprintf("     category: %s", p.Category))
		if len(p.Keywords) > 0 {
			b.WriteString(fmt.Sprintf("  keywords: %s", strings.Join(p.Keywords, ", ")))
		}
		if p.Account != "" {
			b.WriteString(fmt.Sprintf("  account: %s", p.Account))
		}
		if p.AmountMin != nil || p.AmountMax != nil {
			b.WriteString("  amount: ")
			if p.AmountMin != nil {
				b.WriteString(fmt.Sprintf("%.2f", *p.AmountMin))
			}
			b.WriteString("..")
			if p.AmountMax != nil {
				b.WriteString(fmt.Sprintf("%.2f", *p.AmountMax))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
