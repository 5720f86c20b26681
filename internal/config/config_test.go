package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Accounts)
	assert.Equal(t, "Real Estate", cfg.Accounts.EntityFor("0111"))
	assert.NotEmpty(t, cfg.PropertyTenants)
	assert.Contains(t, cfg.Storage.Path, "tally.db")
	assert.Empty(t, cfg.AI.APIKey)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("storage.backend", "firestore")
	v.Set("storage.project_id", "my-project")
	v.Set("ai.api_key", "secret")
	v.Set("ai.model", "gemini-1.5-pro")
	v.Set("heuristics.real_estate_min_amount", 750.0)
	v.Set("accounts", map[string]any{
		"1234": map[string]any{"name": "Test", "type": "Checking", "entity": "Personal"},
	})

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "firestore", cfg.Storage.Backend)
	assert.Equal(t, "my-project", cfg.Storage.ProjectID)
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.AI.Model)
	assert.InDelta(t, 750.0, cfg.Heuristics.RealEstateMinAmount, 0.001)

	// A configured registry replaces the built-in one entirely.
	assert.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "Personal", cfg.Accounts.EntityFor("1234"))
}

func TestExpandPath(t *testing.T) {
	t.Setenv("TALLY_TEST_DIR", "/tmp/tally")

	assert.Equal(t, "/tmp/tally/db", ExpandPath("$TALLY_TEST_DIR/db"))
	assert.NotContains(t, ExpandPath("~/data.db"), "~")
	assert.Equal(t, "", ExpandPath(""))
}
