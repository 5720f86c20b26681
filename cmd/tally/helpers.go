package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/harborstreet/tally/internal/config"
	"github.com/harborstreet/tally/internal/llm"
	"github.com/harborstreet/tally/internal/rules"
	"github.com/harborstreet/tally/internal/storage"
)

// loadConfig reads the typed configuration out of the global viper.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStore opens the configured backend and brings its schema current.
func initStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	store, err := storage.New(ctx, storage.Config{
		Backend:         cfg.Storage.Backend,
		DBPath:          cfg.Storage.Path,
		ProjectID:       cfg.Storage.ProjectID,
		CredentialsFile: cfg.Storage.CredentialsFile,
		CollectionBase:  cfg.Storage.CollectionBase,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// buildEngine assembles the rule engine from the configured mappings.
func buildEngine(cfg *config.Config) *rules.Engine {
	return rules.NewEngine(rules.BuiltinRules(rules.Config{
		PropertyTenants: cfg.PropertyTenants,
		Accounts:        cfg.Accounts,
	}), nil)
}

// buildCategorizer wires the AI client and fallback heuristics. Without
// an API key the categorizer still works, heuristics only.
func buildCategorizer(cfg *config.Config) (*llm.Categorizer, error) {
	heuristicsCfg := llm.DefaultHeuristicsConfig()
	heuristicsCfg.Accounts = cfg.Accounts
	if cfg.Heuristics.RealEstateMinAmount > 0 {
		heuristicsCfg.RealEstateMinAmount = cfg.Heuristics.RealEstateMinAmount
	}
	if cfg.Heuristics.EntityHintConfidence > 0 {
		heuristicsCfg.EntityHintConfidence = cfg.Heuristics.EntityHintConfidence
	}
	if cfg.Heuristics.PeerPaymentMinAmount > 0 {
		heuristicsCfg.PeerPaymentMinAmount = cfg.Heuristics.PeerPaymentMinAmount
	}
	heuristics := llm.NewHeuristics(heuristicsCfg)

	var client llm.Client
	if cfg.AI.APIKey != "" {
		var err error
		client, err = llm.NewGeminiClient(llm.Config{
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Endpoint:    cfg.AI.Endpoint,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AI client: %w", err)
		}
	}
	return llm.NewCategorizer(client, nil, heuristics), nil
}
