package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.imgflip.com", cfg.Imgflip.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Imgflip.Timeout)
	assert.Equal(t, "impact", cfg.Imgflip.Font)
	assert.Equal(t, "50", cfg.Imgflip.MaxFontSize)
	assert.False(t, cfg.Imgflip.PremiumSearch)
	assert.Equal(t, "heuristic", cfg.Generator.Provider)
	assert.Equal(t, 3, cfg.Generator.MaxTerms)
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv("IMGFLIP_USERNAME", "tester")
	t.Setenv("IMGFLIP_PASSWORD", "hunter2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "tester", cfg.Imgflip.Username)
	assert.Equal(t, "hunter2", cfg.Imgflip.Password)
	assert.True(t, cfg.HasCredentials())
}

func TestLoadGeneratorFromEnv(t *testing.T) {
	t.Setenv("GENERATOR_PROVIDER", "llm")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GENERATOR_MODEL", "gpt-4o")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "llm", cfg.Generator.Provider)
	assert.Equal(t, "sk-test", cfg.Generator.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Generator.Model)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := []byte("imgflip:\n  base_url: http://localhost:9999\n  premium_search: true\ngenerator:\n  max_terms: 5\n")
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.Imgflip.BaseURL)
	assert.True(t, cfg.Imgflip.PremiumSearch)
	assert.Equal(t, 5, cfg.Generator.MaxTerms)
	// Untouched keys keep their defaults
	assert.Equal(t, "impact", cfg.Imgflip.Font)
}

func TestHasCredentialsNeedsBoth(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasCredentials())
	cfg.Imgflip.Username = "tester"
	assert.False(t, cfg.HasCredentials())
	cfg.Imgflip.Password = "hunter2"
	assert.True(t, cfg.HasCredentials())
}
