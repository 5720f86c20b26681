package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/harborstreet/tally/internal/model"
)

// Config carries the business mappings the built-in rules close over.
// Zero-value fields fall back to the built-in defaults.
type Config struct {
	PropertyTenants map[string][]string
	Accounts        model.AccountMap
}

func (c Config) withDefaults() Config {
	if c.PropertyTenants == nil {
		c.PropertyTenants = model.DefaultPropertyTenants()
	}
	if c.Accounts == nil {
		c.Accounts = model.DefaultAccounts()
	}
	return c
}

func matched() Match    { return Match{Matched: true} }
func notMatched() Match { return Match{} }

func boolMatch(ok bool) Match {
	return Match{Matched: ok}
}

// BuiltinRules returns the static rule set, evaluated in ascending
// priority order. Account-based defaults sit at the highest priority value
// so every other signal is tried first.
func BuiltinRules(cfg Config) []Rule {
	cfg = cfg.withDefaults()

	return []Rule{
		{
			Name:     "Rental Income - Tenant Payments",
			Priority: 1,
			Condition: func(txn model.Transaction) Match {
				desc := strings.ToLower(txn.Description)
				for property, tenants := range cfg.PropertyTenants {
					for _, tenant := range tenants {
						if strings.Contains(desc, strings.ToLower(tenant)) {
							return Match{Matched: true, Property: property}
						}
					}
				}
				return notMatched()
			},
			Apply: func(txn model.Transaction, m Match) model.Classification {
				return model.Classification{
					Category:   "Rental Income",
					Property:   m.Property,
					Entity:     model.EntityRealEstate,
					Type:       "income",
					Confidence: 1.0,
					Reasoning:  fmt.Sprintf("Tenant payment from %s", txn.Description),
					Source:     "Rule: Tenant Match",
				}
			},
		},
		{
			Name:     "Tech Auditing Income - Known Client",
			Priority: 1,
			Condition: func(txn model.Transaction) Match {
				return boolMatch(txn.Account == "7991" &&
					strings.Contains(strings.ToLower(txn.Description), "packerthomas") &&
					txn.Amount > 0)
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:   "Business Income",
					Entity:     model.EntityTech,
					Type:       "income",
					Confidence: 1.0,
					Reasoning:  "PackerThomas deposit to business account",
					Source:     "Rule: Known Client",
				}
			},
		},
		{
			Name:     "Home Insurance - Allstate",
			Priority: 2,
			Condition: func(txn model.Transaction) Match {
				// Amount range keeps unrelated Allstate charges out.
				return boolMatch(strings.Contains(strings.ToLower(txn.Description), "allstate") &&
					txn.Amount >= -400 && txn.Amount <= -300)
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:   "Insurance",
					Property:   "Primary Residence",
					Entity:     model.EntityPersonal,
					Type:       "expense",
					Confidence: 0.95,
					Reasoning:  "Annual Allstate payment in expected range",
					Source:     "Rule: Insurance Pattern",
				}
			},
		},
		{
			Name:     "Investment Transfer - Monthly",
			Priority: 2,
			Condition: func(txn model.Transaction) Match {
				return boolMatch(txn.Account == "8529" &&
					strings.Contains(strings.ToLower(txn.Description), "transfer to 8895") &&
					math.Abs(txn.Amount) == 1250)
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:   "Transfer",
					Entity:     model.EntityInvestment,
					Confidence: 1.0,
					Reasoning:  "Monthly $1,250 investment transfer",
					Source:     "Rule: Recurring Transfer",
				}
			},
		},
		{
			Name:     "Health Insurance Payment",
			Priority: 2,
			Condition: func(txn model.Transaction) Match {
				return boolMatch(txn.Account == "7588" && math.Abs(txn.Amount) == 1367)
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:    "Healthcare",
					SubCategory: "Health Insurance",
					Entity:      model.EntityPersonal,
					Type:        "expense",
					Confidence:  1.0,
					Reasoning:   "Monthly health insurance payment",
					Source:      "Rule: Fixed Amount",
				}
			},
		},
		{
			Name:     "HSA Contribution",
			Priority: 2,
			Condition: func(txn model.Transaction) Match {
				return boolMatch(txn.Account == "7588" && math.Abs(txn.Amount) == 750)
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:    "Healthcare",
					SubCategory: "HSA Contribution",
					Entity:      model.EntityPersonal,
					Type:        "expense",
					Confidence:  1.0,
					Reasoning:   "Monthly HSA contribution",
					Source:      "Rule: Fixed Amount",
				}
			},
		},
		{
			Name:     "Mortgage Payment",
			Priority: 2,
			Condition: func(txn model.Transaction) Match {
				desc := strings.ToLower(txn.Description)
				return boolMatch((strings.Contains(desc, "mortgage") || strings.Contains(desc, "home loan")) &&
					txn.Amount < 0)
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:   "Mortgage",
					Entity:     model.EntityRealEstate,
					Type:       "expense",
					Confidence: 0.95,
					Reasoning:  "Mortgage payment",
					Source:     "Rule: Mortgage Pattern",
				}
			},
		},
		{
			Name:     "Internet - Vyve",
			Priority: 3,
			Condition: func(txn model.Transaction) Match {
				return boolMatch(strings.Contains(strings.ToLower(txn.Description), "vyve"))
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:    "Utilities",
					SubCategory: "Internet",
					Entity:      model.EntityPersonal,
					Type:        "expense",
					Confidence:  1.0,
					Reasoning:   "Vyve internet service",
					Source:      "Rule: Known Vendor",
				}
			},
		},
		{
			Name:     "Internet - Frontier",
			Priority: 3,
			Condition: func(txn model.Transaction) Match {
				return boolMatch(strings.Contains(strings.ToLower(txn.Description), "frontier"))
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:    "Utilities",
					SubCategory: "Internet",
					Entity:      model.EntityPersonal,
					Type:        "expense",
					Confidence:  1.0,
					Reasoning:   "Frontier internet service",
					Source:      "Rule: Known Vendor",
				}
			},
		},
		{
			Name:     "Netflix Subscription",
			Priority: 3,
			Condition: func(txn model.Transaction) Match {
				return boolMatch(strings.Contains(strings.ToLower(txn.Description), "netflix"))
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:   "Entertainment",
					Entity:     model.EntityPersonal,
					Type:       "expense",
					Confidence: 1.0,
					Reasoning:  "Netflix subscription",
					Source:     "Rule: Known Vendor",
				}
			},
		},
		{
			Name:     "Property Maintenance",
			Priority: 3,
			Condition: func(txn model.Transaction) Match {
				if txn.Account != "8529" {
					return notMatched()
				}
				desc := strings.ToLower(txn.Description)
				keywords := []string{"repair", "plumber", "electric", "hvac", "maintenance", "home depot", "lowes"}
				found := false
				for _, keyword := range keywords {
					if strings.Contains(desc, keyword) {
						found = true
						break
					}
				}
				if !found {
					return notMatched()
				}
				// Bind the property when the description names one.
				for property := range cfg.PropertyTenants {
					if strings.Contains(desc, strings.ToLower(property)) {
						return Match{Matched: true, Property: property}
					}
				}
				return matched()
			},
			Apply: func(txn model.Transaction, m Match) model.Classification {
				confidence := 0.7
				if m.Property != "" {
					confidence = 0.9
				}
				return model.Classification{
					Category:   "Maintenance",
					Property:   m.Property,
					Entity:     model.EntityRealEstate,
					Type:       "expense",
					Confidence: confidence,
					Reasoning:  "Property maintenance expense",
					Source:     "Rule: Maintenance Pattern",
				}
			},
		},
		{
			Name:     "Car Insurance",
			Priority: 3,
			Condition: func(txn model.Transaction) Match {
				desc := strings.ToLower(txn.Description)
				insurers := []string{"geico", "progressive", "state farm", "farmers", "usaa"}
				for _, insurer := range insurers {
					// Upper bound keeps large same-vendor charges out.
					if strings.Contains(desc, insurer) && txn.Amount < 0 && math.Abs(txn.Amount) < 500 {
						return matched()
					}
				}
				return notMatched()
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:    "Insurance",
					SubCategory: "Auto Insurance",
					Entity:      model.EntityPersonal,
					Type:        "expense",
					Confidence:  0.9,
					Reasoning:   "Auto insurance payment",
					Source:      "Rule: Insurance Company",
				}
			},
		},
		{
			Name:     "Credit Card Payment",
			Priority: 4,
			Condition: func(txn model.Transaction) Match {
				desc := strings.ToLower(txn.Description)
				return boolMatch(strings.Contains(desc, "payment thank you") ||
					strings.Contains(desc, "autopay payment") ||
					(strings.Contains(desc, "payment") && strings.Contains(desc, "credit")))
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:   "Credit Card Payment",
					Entity:     model.EntityPersonal,
					Type:       "expense",
					Confidence: 0.9,
					Reasoning:  "Credit card payment",
					Source:     "Rule: Payment Pattern",
				}
			},
		},
		{
			Name:     "Real Estate Income Default",
			Priority: 10,
			Condition: func(txn model.Transaction) Match {
				return boolMatch((txn.Account == "0111" || txn.Account == "0898") && txn.Amount > 0)
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:   "Other Income",
					Entity:     model.EntityRealEstate,
					Type:       "income",
					Confidence: 0.6,
					Reasoning:  "Income to real estate account",
					Source:     "Rule: Account Default",
				}
			},
		},
		{
			Name:     "Real Estate Expense Default",
			Priority: 10,
			Condition: func(txn model.Transaction) Match {
				return boolMatch(txn.Account == "8529" && txn.Amount < 0)
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:   "Other Expenses",
					Entity:     model.EntityRealEstate,
					Type:       "expense",
					Confidence: 0.6,
					Reasoning:  "Expense from real estate operations account",
					Source:     "Rule: Account Default",
				}
			},
		},
		{
			Name:     "Business Income Default",
			Priority: 10,
			Condition: func(txn model.Transaction) Match {
				return boolMatch(txn.Account == "7991" && txn.Amount > 0)
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:   "Business Income",
					Entity:     model.EntityTech,
					Type:       "income",
					Confidence: 0.7,
					Reasoning:  "Income to business account",
					Source:     "Rule: Account Default",
				}
			},
		},
		{
			Name:     "Business Expense Default",
			Priority: 10,
			Condition: func(txn model.Transaction) Match {
				return boolMatch(txn.Account == "2299" && txn.Amount < 0)
			},
			Apply: func(model.Transaction, Match) model.Classification {
				return model.Classification{
					Category:   "Business Expenses",
					Entity:     model.EntityTech,
					Type:       "expense",
					Confidence: 0.7,
					Reasoning:  "Business credit card expense",
					Source:     "Rule: Account Default",
				}
			},
		},
	}
}
