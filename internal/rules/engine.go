// Package rules implements the deterministic categorization path: an
// ordered set of built-in condition/action rules followed by user-authored
// custom patterns.
package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/harborstreet/tally/internal/model"
)

// Match is the result of evaluating a rule condition. Conditions may bind
// extra context, such as the property a tenant name resolved to.
type Match struct {
	Property string
	Matched  bool
}

// Rule is a deterministic condition/action pair. Rules are immutable after
// construction; lower priority values are evaluated first.
type Rule struct {
	Condition func(model.Transaction) Match
	Apply     func(model.Transaction, Match) model.Classification
	Name      string
	Priority  int
}

// customPatternConfidence is the fixed confidence assigned to custom
// pattern matches.
const customPatternConfidence = 0.85

// Engine evaluates built-in rules in priority order, then custom patterns
// in insertion order. First match wins at both stages; the engine performs
// no conflict detection or highest-confidence arbitration, since the rule
// set is hand-curated to be mutually exclusive in practice.
type Engine struct {
	now      func() time.Time
	rules    []Rule
	patterns []model.CustomPattern
}

// NewEngine creates an engine over the given rules and custom patterns.
// Rules are sorted once by ascending priority; ties keep declaration order.
func NewEngine(rules []Rule, patterns []model.CustomPattern) *Engine {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &Engine{rules: sorted, patterns: patterns, now: time.Now}
}

// SetPatterns replaces the custom pattern list, e.g. after a reload.
func (e *Engine) SetPatterns(patterns []model.CustomPattern) {
	e.patterns = patterns
}

// Apply runs the transaction through the rule chain. It returns nil when
// neither a built-in rule nor a custom pattern matches, in which case the
// caller proceeds to the AI/fallback stages.
func (e *Engine) Apply(txn model.Transaction) *model.Classification {
	for _, rule := range e.rules {
		match := rule.Condition(txn)
		if !match.Matched {
			continue
		}

		result := rule.Apply(txn, match)
		result.RuleApplied = rule.Name
		result.ClassifiedAt = e.now()
		result.Method = model.MethodRule
		if result.Type == "" {
			result.Type = typeForAmount(txn.Amount)
		}
		result.Normalize()

		slog.Debug("rule matched", "rule", rule.Name, "description", txn.Description)
		return &result
	}

	return e.applyCustomPatterns(txn)
}

func (e *Engine) applyCustomPatterns(txn model.Transaction) *model.Classification {
	for _, pattern := range e.patterns {
		if !MatchesPattern(txn, pattern) {
			continue
		}

		result := model.Classification{
			Category:     pattern.Category,
			Property:     pattern.Property,
			Entity:       pattern.Entity,
			Type:         typeForAmount(txn.Amount),
			Confidence:   customPatternConfidence,
			Reasoning:    fmt.Sprintf("Matches custom pattern: %s", pattern.Name),
			Source:       "Custom Pattern",
			RuleApplied:  pattern.Name,
			ClassifiedAt: e.now(),
			Method:       model.MethodCustomPattern,
		}
		result.Normalize()

		slog.Debug("custom pattern matched", "pattern", pattern.Name, "description", txn.Description)
		return &result
	}
	return nil
}

// MatchesPattern reports whether a transaction satisfies every configured
// constraint of a custom pattern. Keywords OR-match against the lowercased
// description; amount bounds are inclusive and enforced independently;
// account must be equal when set.
func MatchesPattern(txn model.Transaction, pattern model.CustomPattern) bool {
	desc := strings.ToLower(txn.Description)

	if len(pattern.Keywords) > 0 {
		found := false
		for _, keyword := range pattern.Keywords {
			if strings.Contains(desc, strings.ToLower(keyword)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if pattern.AmountMin != nil && txn.Amount < *pattern.AmountMin {
		return false
	}
	if pattern.AmountMax != nil && txn.Amount > *pattern.AmountMax {
		return false
	}

	if pattern.Account != "" && txn.Account != pattern.Account {
		return false
	}

	return true
}

func typeForAmount(amount float64) string {
	if amount > 0 {
		return "income"
	}
	return "expense"
}
