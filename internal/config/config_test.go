package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"mode": "balanced",
		"target": "general",
		"seed": 42,
		"strict_model": "gemini-2.5-pro",
		"max_rounds": 5,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "balanced", cfg.Mode)
	assert.Equal(t, "general", cfg.Target)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "gemini-2.5-pro", cfg.StrictModel)
	assert.Equal(t, 5, cfg.MaxRounds)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_UnknownMode(t *testing.T) {
	cfg := &Config{
		Mode: "reckless",
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Mode")
}

func TestValidate_OutOfRangeValues(t *testing.T) {
	cfg := &Config{
		Threshold: 11,
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Threshold")

	cfg = &Config{
		PopulationSize: 1,
	}
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PopulationSize")
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		Mode:           "aggressive",
		Threshold:      7,
		MaxRounds:      8,
		PopulationSize: 10,
	}

	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestValidate_ZeroConfigIsValid(t *testing.T) {
	// All fields optional; a zero config validates and relies on defaults.
	cfg := &Config{}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		Mode:           "balanced",
		StrictModel:    "gemini-2.5-pro",
		LenientModel:   "gpt-4o-mini",
		Threshold:      7,
		MaxRounds:      8,
		PopulationSize: 10,
	}

	partial := Config{
		Mode: "stealth",
		Seed: 42,
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "stealth", merged.Mode)
	assert.Equal(t, int64(42), merged.Seed)

	// Default values should fill in empty fields
	assert.Equal(t, "gemini-2.5-pro", merged.StrictModel)
	assert.Equal(t, "gpt-4o-mini", merged.LenientModel)
	assert.Equal(t, 7, merged.Threshold)
	assert.Equal(t, 8, merged.MaxRounds)
	assert.Equal(t, 10, merged.PopulationSize)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{
		Mode:   "chaos",
		Target: "study",
	}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "chaos", merged.Mode)
	assert.Equal(t, "study", merged.Target)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("DATABASE_URL", "postgres://env")

	cfg := Config{GeminiAPIKey: "from-file"}
	cfg.FromEnv()

	// File value wins; env fills only the gaps.
	assert.Equal(t, "from-file", cfg.GeminiAPIKey)
	assert.Equal(t, "env-openai", cfg.OpenAIAPIKey)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
}
