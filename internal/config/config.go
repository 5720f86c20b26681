package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/harborstreet/tally/internal/model"
)

// Storage selects and configures the persistence backend.
type Storage struct {
	Backend         string `mapstructure:"backend"`
	Path            string `mapstructure:"path"`
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	CollectionBase  string `mapstructure:"collection_base"`
}

// AI configures the Gemini categorizer. An empty APIKey disables it.
type AI struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Endpoint    string  `mapstructure:"endpoint"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// Heuristics tunes the fallback classifier thresholds.
type Heuristics struct {
	RealEstateMinAmount  float64 `mapstructure:"real_estate_min_amount"`
	EntityHintConfidence float64 `mapstructure:"entity_hint_confidence"`
	PeerPaymentMinAmount float64 `mapstructure:"peer_payment_min_amount"`
}

// Config is the full application configuration.
type Config struct {
	Accounts        model.AccountMap    `mapstructure:"accounts"`
	PropertyTenants map[string][]string `mapstructure:"property_tenants"`
	Storage         Storage             `mapstructure:"storage"`
	AI              AI                  `mapstructure:"ai"`
	Heuristics      Heuristics          `mapstructure:"heuristics"`
}

// Load reads the typed configuration out of viper, filling in the
// built-in account registry and tenant map when the file omits them.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if len(cfg.Accounts) == 0 {
		cfg.Accounts = model.DefaultAccounts()
	}
	if len(cfg.PropertyTenants) == 0 {
		cfg.PropertyTenants = model.DefaultPropertyTenants()
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "~/.local/share/tally/tally.db"
	}
	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
	if cfg.Storage.CredentialsFile != "" {
		cfg.Storage.CredentialsFile = ExpandPath(cfg.Storage.CredentialsFile)
	}
	return &cfg, nil
}
