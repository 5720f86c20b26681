package model

import (
	"crypto/sha256"
	"fmt"
	"math"
	"strings"
	"time"
)

// Transaction represents a single financial transaction, either a candidate
// parsed from a bank export or a record loaded from the store.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string  // Raw narrative from the bank
	Account     string  // Last 4 digits of the account number
	Amount      float64 // Signed; purchases on credit cards are negative
	Balance     *float64

	// Assigned by classification
	Type        string // income or expense
	Category    string
	SubCategory string
	Property    string
	Entity      string
	Confidence  float64
	Method      Method
	Reasoning   string

	// Scopes the record to one import session; empty once persisted.
	ImportID string
}

// GenerateHash creates a stable identifier for persistence and duplicate
// detection, keyed on the fields the duplicate predicate compares.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		strings.ToLower(strings.TrimSpace(t.Description)),
		t.Account)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Validate reports whether the transaction is well-formed enough to classify.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("transaction has empty description")
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return fmt.Errorf("transaction amount is not finite: %v", t.Amount)
	}
	if t.Account == "" {
		return fmt.Errorf("transaction has no account")
	}
	return nil
}
