// Package importer runs the Upload, Review, Confirm import session.
package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/harborstreet/tally/internal/bankcsv"
	"github.com/harborstreet/tally/internal/common"
	"github.com/harborstreet/tally/internal/dedup"
	"github.com/harborstreet/tally/internal/llm"
	"github.com/harborstreet/tally/internal/model"
	"github.com/harborstreet/tally/internal/ofx"
	"github.com/harborstreet/tally/internal/rules"
	"github.com/harborstreet/tally/internal/storage"
)

// State tracks where a session is in the import flow.
type State int

const (
	// StateUpload accepts a new file.
	StateUpload State = iota
	// StateReview holds classified candidates awaiting confirmation.
	StateReview
)

// Confidence thresholds for the review buckets and the uncertain subset.
const (
	highConfidence = 0.8
	lowConfidence  = 0.7
)

// Failure is a candidate row that could not be classified, with the
// reason it was set aside.
type Failure struct {
	Transaction model.Transaction
	Reason      string
}

// Summary describes the classified batch shown on the review screen.
type Summary struct {
	CategoryCounts map[string]int
	Account        string
	Total          int
	Categorized    int
	Duplicates     int
	Failed         int
	RuleMatched    int
	AISuggested    int
	LowConfidence  int
	Uncategorized  int
}

// Session drives one import from file upload through commit. It is not
// safe for concurrent use; each import gets its own session.
type Session struct {
	store       storage.Store
	engine      *rules.Engine
	categorizer *llm.Categorizer
	accounts    model.AccountMap
	csvParser   *bankcsv.Parser
	ofxParser   *ofx.Parser
	newID       func() string

	// OnProgress, when set, is called after each candidate is routed.
	OnProgress func(done, total int)

	state       State
	account     string
	categorized []model.Transaction
	duplicates  []model.Transaction
	failed      []Failure
}

// NewSession creates a session over the given collaborators. A nil
// account map falls back to the built-in registry.
func NewSession(store storage.Store, engine *rules.Engine, categorizer *llm.Categorizer, accounts model.AccountMap) *Session {
	if accounts == nil {
		accounts = model.DefaultAccounts()
	}
	return &Session{
		store:       store,
		engine:      engine,
		categorizer: categorizer,
		accounts:    accounts,
		csvParser:   bankcsv.NewParser(),
		ofxParser:   ofx.NewParser(),
		newID:       uuid.NewString,
	}
}

var accountDigitsRegex = regexp.MustCompile(`\d{4}`)

// AccountFromFilename extracts the account identifier, the first run of
// four digits in the file name.
func AccountFromFilename(filename string) (string, error) {
	match := accountDigitsRegex.FindString(filepath.Base(filename))
	if match == "" {
		return "", fmt.Errorf("filename %q: %w", filepath.Base(filename), common.ErrNoAccount)
	}
	return match, nil
}

// Upload parses the file, routes every candidate to exactly one of
// categorized, duplicates, or failed, and moves the session to review.
// Bulk classification uses rules and heuristics only; the AI runs later,
// on request, over the uncertain subset.
func (s *Session) Upload(ctx context.Context, filename, content string) (*Summary, error) {
	if s.state != StateUpload {
		return nil, fmt.Errorf("session already holds an unconfirmed batch")
	}

	candidates, account, err := s.parseFile(filename, content)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), common.ErrNoTransactions)
	}

	existing, err := s.store.LoadAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing transactions: %w", err)
	}
	patterns, err := s.store.GetCustomPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom patterns: %w", err)
	}
	s.engine.SetPatterns(patterns)

	detector := dedup.NewDetector(existing)

	s.account = account
	s.categorized = nil
	s.duplicates = nil
	s.failed = nil

	for i, candidate := range candidates {
		s.route(candidate, detector)
		if s.OnProgress != nil {
			s.OnProgress(i+1, len(candidates))
		}
	}

	s.state = StateReview
	summary := s.Summary()
	return summary, nil
}

// route sends one candidate to exactly one partition.
func (s *Session) route(candidate model.Transaction, detector *dedup.Detector) {
	if err := candidate.Validate(); err != nil {
		s.failed = append(s.failed, Failure{Transaction: candidate, Reason: err.Error()})
		return
	}
	if detector.IsDuplicate(candidate) {
		s.duplicates = append(s.duplicates, candidate)
		return
	}

	result := s.engine.Apply(candidate)
	if result == nil {
		fallback := s.categorizer.Fallback(candidate)
		result = &fallback
	}
	result.ApplyTo(&candidate)

	if candidate.Entity == "" {
		candidate.Entity = s.accounts.EntityFor(candidate.Account)
	}
	candidate.ImportID = s.newID()
	s.categorized = append(s.categorized, candidate)
}

// parseFile picks the parser by extension. OFX files carry their own
// account numbers; CSV files take theirs from the file name.
func (s *Session) parseFile(filename, content string) ([]model.Transaction, string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ofx", ".qfx":
		txns, err := s.ofxParser.Parse(strings.NewReader(content))
		if err != nil {
			return nil, "", err
		}
		account := ""
		if len(txns) > 0 {
			account = txns[0].Account
		}
		return txns, account, nil
	default:
		account, err := AccountFromFilename(filename)
		if err != nil {
			return nil, "", err
		}
		return s.csvParser.Parse(content, account), account, nil
	}
}

// Summary builds the review counts for the current batch.
func (s *Session) Summary() *Summary {
	summary := &Summary{
		CategoryCounts: make(map[string]int),
		Account:        s.account,
		Total:          len(s.categorized) + len(s.duplicates) + len(s.failed),
		Categorized:    len(s.categorized),
		Duplicates:     len(s.duplicates),
		Failed:         len(s.failed),
	}
	for _, txn := range s.categorized {
		summary.CategoryCounts[txn.Category]++
		switch {
		case txn.Category == model.CategoryUncategorized:
			summary.Uncategorized++
		case txn.Method == model.MethodAI:
			summary.AISuggested++
		case txn.Confidence >= highConfidence:
			summary.RuleMatched++
		}
		if txn.Confidence < lowConfidence {
			summary.LowConfidence++
		}
	}
	return summary
}

// Categorized returns the pending batch for display.
func (s *Session) Categorized() []model.Transaction {
	return s.categorized
}

// Duplicates returns the rows set aside as already present.
func (s *Session) Duplicates() []model.Transaction {
	return s.duplicates
}

// Failed returns the rows that were rejected, with reasons.
func (s *Session) Failed() []Failure {
	return s.failed
}

// RecategorizeUncertain re-runs the AI over the low-confidence and
// uncategorized rows, keeping an AI suggestion only when it is strictly
// more confident than the current classification. Returns how many rows
// were updated.
func (s *Session) RecategorizeUncertain(ctx context.Context) (int, error) {
	if s.state != StateReview {
		return 0, fmt.Errorf("no batch under review")
	}
	if !s.categorizer.Enabled() {
		return 0, fmt.Errorf("AI categorization: %w", common.ErrMissingConfig)
	}

	var uncertain []model.Transaction
	for _, txn := range s.categorized {
		if txn.Confidence < lowConfidence || txn.Category == model.CategoryUncategorized {
			uncertain = append(uncertain, txn)
		}
	}
	if len(uncertain) == 0 {
		return 0, nil
	}

	byImportID := make(map[string]int, len(s.categorized))
	for i, txn := range s.categorized {
		byImportID[txn.ImportID] = i
	}

	updated := 0
	for _, result := range s.categorizer.BatchCategorize(ctx, uncertain) {
		i, ok := byImportID[result.Transaction.ImportID]
		if !ok {
			continue
		}
		if result.Suggestion.Confidence > s.categorized[i].Confidence {
			result.Suggestion.ApplyTo(&s.categorized[i])
			updated++
		}
	}
	return updated, nil
}

// Confirm commits the categorized batch in one call and resets the
// session. Per-row failures come back in the tally; they are reported,
// not retried.
func (s *Session) Confirm(ctx context.Context) (storage.BatchResult, error) {
	if s.state != StateReview {
		return storage.BatchResult{}, fmt.Errorf("no batch under review")
	}
	if len(s.categorized) == 0 {
		return storage.BatchResult{}, fmt.Errorf("nothing to commit: %w", common.ErrNoTransactions)
	}

	result, err := s.store.AddTransactionBatch(ctx, s.categorized)
	if err != nil {
		return result, fmt.Errorf("failed to commit batch: %w", err)
	}

	s.state = StateUpload
	s.account = ""
	s.categorized = nil
	s.duplicates = nil
	s.failed = nil
	return result, nil
}
