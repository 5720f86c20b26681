// Package model defines the core domain models used throughout the application.
package model

import "time"

// Method identifies which pipeline stage produced a classification.
type Method string

// Method tag constants.
const (
	MethodRule            Method = "rule"
	MethodCustomPattern   Method = "custom-pattern"
	MethodAI              Method = "ai"
	MethodFallbackRule    Method = "fallback-rule"
	MethodFallbackDefault Method = "fallback-default"
)

// CategoryUncategorized is the sentinel category assigned when no stage
// produced a real one; persisted transactions never carry an empty category.
const CategoryUncategorized = "Uncategorized"

// Classification is the structured output of the categorization chain for
// one transaction.
type Classification struct {
	ClassifiedAt time.Time
	Type         string // income or expense
	Category     string
	SubCategory  string
	Property     string
	Entity       string
	Source       string // Human-readable stage label, e.g. "Rule: Known Vendor"
	RuleApplied  string
	Reasoning    string
	Method       Method
	Confidence   float64
}

// Normalize enforces the output invariants: category is never empty and
// confidence stays within [0,1].
func (c *Classification) Normalize() {
	if c.Category == "" {
		c.Category = CategoryUncategorized
	}
	if c.Confidence < 0 {
		c.Confidence = 0
	}
	if c.Confidence > 1 {
		c.Confidence = 1
	}
}

// ApplyTo copies the classification onto a transaction.
func (c *Classification) ApplyTo(txn *Transaction) {
	c.Normalize()
	txn.Type = c.Type
	txn.Category = c.Category
	txn.SubCategory = c.SubCategory
	if c.Property != "" {
		txn.Property = c.Property
	}
	if c.Entity != "" {
		txn.Entity = c.Entity
	}
	txn.Confidence = c.Confidence
	txn.Method = c.Method
	txn.Reasoning = c.Reasoning
}
