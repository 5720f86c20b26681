package model

// Account describes a known bank account, keyed by its last 4 digits.
type Account struct {
	Name        string `mapstructure:"name"`
	Type        string `mapstructure:"type"`
	Entity      string `mapstructure:"entity"`
	Description string `mapstructure:"description"`
}

// Entity grouping constants.
const (
	EntityRealEstate = "Real Estate"
	EntityTech       = "Tech Business"
	EntityPersonal   = "Personal"
	EntityInvestment = "Investment"
)

// AccountMap maps account identifiers to account metadata.
type AccountMap map[string]Account

// EntityFor returns the entity a transaction on the given account is
// attributed to, defaulting to Personal for unknown accounts.
func (m AccountMap) EntityFor(accountID string) string {
	if acct, ok := m[accountID]; ok && acct.Entity != "" {
		return acct.Entity
	}
	return EntityPersonal
}

// DefaultAccounts returns the built-in account registry. Deployments
// override this via the accounts section of the config file.
func DefaultAccounts() AccountMap {
	return AccountMap{
		"0111": {Name: "Sweep Account (0111)", Type: "Checking", Entity: EntityRealEstate, Description: "Primary rent collection account"},
		"8529": {Name: "Real Estate Ops (8529)", Type: "Business", Entity: EntityRealEstate, Description: "Real estate operating expenses"},
		"7991": {Name: "Tech Auditing (7991)", Type: "Business", Entity: EntityTech, Description: "Tech consulting income"},
		"2299": {Name: "Business Expenses (2299)", Type: "Credit Card", Entity: EntityTech, Description: "Tech business expenses"},
		"2433": {Name: "Visa Prime (2433)", Type: "Credit Card", Entity: EntityPersonal, Description: "Personal credit card"},
		"7588": {Name: "Shared Checking (7588)", Type: "Checking", Entity: EntityPersonal, Description: "Health insurance, HSA, shared expenses"},
		"8895": {Name: "Self-Directed Investment (8895)", Type: "Investment", Entity: EntityInvestment, Description: "Self-directed investment account"},
		"0898": {Name: "Secondary Income (0898)", Type: "Checking", Entity: EntityPersonal, Description: "Real estate income transfers"},
	}
}

// DefaultPropertyTenants returns the built-in property to tenant-name
// mapping used for rental income attribution.
func DefaultPropertyTenants() map[string][]string {
	return map[string][]string{
		"5th Street":  {"jack sevilla", "araceli ponce"},
		"50th Street": {"lucy cepeda", "jesus cruz"},
		"Las Palmas":  {"angel de la cruz"},
		"37th Street": {"pablo joaquin"},
		"2nd Street":  {"wendy cordova", "geron vile"},
		"36th Street": {"michelle ruth", "steven malloy"},
		"59th Street": {"claribel castillomero", "belem amaro"},
		"61st Street": {},
		"9th Street":  {},
	}
}

// CategoryNames returns the category vocabulary offered to the AI
// categorizer, income categories first.
func CategoryNames() []string {
	return []string{
		"Rental Income",
		"Business Income",
		"Real Estate Income",
		"Investment Income",
		"Other Income",
		"Mortgage",
		"Property Tax",
		"Insurance",
		"Maintenance",
		"Utilities",
		"Business Expenses",
		"Healthcare",
		"Entertainment",
		"Credit Card Payment",
		"Investment Transfer",
		"Transfer",
		"Other Expenses",
	}
}
