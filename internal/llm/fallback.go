package llm

import (
	"math"
	"strings"

	"github.com/harborstreet/tally/internal/model"
)

// HeuristicsConfig carries the tunable constants of the fallback path.
// The real-estate materiality threshold and the entity-hint confidence
// have no documented business rationale; they default to the values the
// rules were tuned against and stay configurable pending product-owner
// confirmation.
type HeuristicsConfig struct {
	Accounts             model.AccountMap
	RealEstateMinAmount  float64
	EntityHintConfidence float64
	PeerPaymentMinAmount float64
}

// DefaultHeuristicsConfig returns the tuned defaults.
func DefaultHeuristicsConfig() HeuristicsConfig {
	return HeuristicsConfig{
		Accounts:             model.DefaultAccounts(),
		RealEstateMinAmount:  500,
		EntityHintConfidence: 0.6,
		PeerPaymentMinAmount: 500,
	}
}

// Heuristics is the terminal classification stage: pure, no I/O, total.
// Branches are evaluated in order and the first match wins, mirroring the
// rule engine's discipline.
type Heuristics struct {
	cfg HeuristicsConfig
}

// NewHeuristics creates the fallback classifier.
func NewHeuristics(cfg HeuristicsConfig) *Heuristics {
	if cfg.Accounts == nil {
		cfg.Accounts = model.DefaultAccounts()
	}
	if cfg.RealEstateMinAmount == 0 {
		cfg.RealEstateMinAmount = 500
	}
	if cfg.EntityHintConfidence == 0 {
		cfg.EntityHintConfidence = 0.6
	}
	if cfg.PeerPaymentMinAmount == 0 {
		cfg.PeerPaymentMinAmount = 500
	}
	return &Heuristics{cfg: cfg}
}

// rentKeywords and payerSurnames feed the peer-payment branch: a Zelle or
// Venmo credit only counts as rent when it carries a rent-like word or a
// known payer surname.
var (
	rentKeywords  = []string{"payment", "rent", "deposit", "tenant"}
	payerSurnames = []string{"smith", "johnson", "williams", "brown", "jones", "davis", "miller"}
)

// Classify assigns a best-effort classification. It never fails and always
// returns a bounded confidence, even for empty descriptions or zero amounts.
func (h *Heuristics) Classify(txn model.Transaction) model.Classification {
	desc := strings.ToLower(txn.Description)
	amount := math.Abs(txn.Amount)

	if result := h.keywordBranch(txn, desc, amount); result != nil {
		result.Method = model.MethodFallbackRule
		result.Normalize()
		return *result
	}

	if result := h.entityHint(txn, amount); result != nil {
		result.Method = model.MethodFallbackRule
		result.Normalize()
		return *result
	}

	// Terminal default: only the amount sign carries any signal.
	result := model.Classification{
		Type:       typeForAmount(txn.Amount),
		Category:   model.CategoryUncategorized,
		Confidence: 0.1,
		Reasoning:  "No heuristic matched",
		Source:     "Fallback: Default",
		Method:     model.MethodFallbackDefault,
	}
	result.Normalize()
	return result
}

func (h *Heuristics) keywordBranch(txn model.Transaction, desc string, amount float64) *model.Classification {
	switch {
	case strings.Contains(desc, "0111") && strings.Contains(desc, "transfer"):
		// Transfers referencing the rent sweep account are rent income.
		return &model.Classification{
			Type: "income", Category: "Real Estate Income", SubCategory: "Rent",
			Confidence: 0.95, Entity: model.EntityRealEstate,
			Reasoning: "Transfer from rent collection account", Source: "Fallback: Self Transfer",
		}

	case (strings.Contains(desc, "zelle") || strings.Contains(desc, "venmo")) &&
		amount >= h.cfg.PeerPaymentMinAmount &&
		(containsAny(desc, rentKeywords) || containsAny(desc, payerSurnames)):
		return &model.Classification{
			Type: "income", Category: "Real Estate Income", SubCategory: "Rent",
			Confidence: 0.85, Entity: model.EntityRealEstate,
			Reasoning: "Peer payment matching rent pattern", Source: "Fallback: Peer Payment",
		}

	case strings.Contains(desc, "mortgage") || strings.Contains(desc, "rocket") || strings.Contains(desc, "mtg"):
		return &model.Classification{
			Type: "expense", Category: "Mortgage", SubCategory: "Property",
			Confidence: 0.9, Entity: model.EntityRealEstate,
			Reasoning: "Mortgage servicer keyword", Source: "Fallback: Mortgage",
		}

	case strings.Contains(desc, "consulting") || strings.Contains(desc, "audit") || strings.Contains(desc, "invoice"):
		return &model.Classification{
			Type: "income", Category: "Business Income", SubCategory: "Consulting",
			Confidence: 0.85, Entity: model.EntityTech,
			Reasoning: "Consulting or invoice keyword", Source: "Fallback: Business",
		}

	case strings.Contains(desc, "schwab") || strings.Contains(desc, "vanguard") || strings.Contains(desc, "fidelity"):
		return &model.Classification{
			Type: typeForAmount(txn.Amount), Category: "Investment Transfer", SubCategory: "Brokerage",
			Confidence: 0.8, Entity: model.EntityInvestment,
			Reasoning: "Brokerage name", Source: "Fallback: Brokerage",
		}

	case strings.Contains(desc, "electric") || strings.Contains(desc, "water") || strings.Contains(desc, "gas") ||
		strings.Contains(desc, "utility") || strings.Contains(desc, "vyve") || strings.Contains(desc, "frontier"):
		return &model.Classification{
			Type: "expense", Category: "Utilities",
			Confidence: 0.85, Entity: model.EntityPersonal,
			Reasoning: "Utility provider keyword", Source: "Fallback: Utilities",
		}

	case strings.Contains(desc, "insurance") || strings.Contains(desc, "state farm") || strings.Contains(desc, "geico"):
		sub := "Auto"
		if strings.Contains(desc, "health") {
			sub = "Health"
		}
		return &model.Classification{
			Type: "expense", Category: "Insurance", SubCategory: sub,
			Confidence: 0.85, Entity: model.EntityPersonal,
			Reasoning: "Insurance keyword", Source: "Fallback: Insurance",
		}

	case strings.Contains(desc, "payment") && (strings.Contains(desc, "visa") || strings.Contains(desc, "mastercard") ||
		strings.Contains(desc, "amex") || strings.Contains(desc, "discover")):
		return &model.Classification{
			Type: "expense", Category: "Credit Card Payment",
			Confidence: 0.8, Entity: model.EntityPersonal,
			Reasoning: "Card network payment keyword", Source: "Fallback: Card Payment",
		}
	}
	return nil
}

// entityHint weakly classifies from the account's entity when no keyword
// branch matched.
func (h *Heuristics) entityHint(txn model.Transaction, amount float64) *model.Classification {
	acct, ok := h.cfg.Accounts[txn.Account]
	if !ok {
		return nil
	}

	switch acct.Entity {
	case model.EntityRealEstate:
		if amount > h.cfg.RealEstateMinAmount && txn.Amount > 0 {
			return &model.Classification{
				Type: "income", Category: "Real Estate Income",
				Confidence: h.cfg.EntityHintConfidence, Entity: acct.Entity,
				Reasoning: "Material income to a real estate account", Source: "Fallback: Account Entity",
			}
		}
	case model.EntityTech:
		category := "Business Income"
		if txn.Amount < 0 {
			category = "Business Expenses"
		}
		return &model.Classification{
			Type: typeForAmount(txn.Amount), Category: category,
			Confidence: h.cfg.EntityHintConfidence, Entity: acct.Entity,
			Reasoning: "Activity on a tech business account", Source: "Fallback: Account Entity",
		}
	}
	return nil
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func typeForAmount(amount float64) string {
	if amount > 0 {
		return "income"
	}
	return "expense"
}
