// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags.
type Config struct {
	// Run parameters
	Mode   string `json:"mode,omitempty" validate:"omitempty,oneof=stealth balanced aggressive chaos"` // Entropy mode
	Target string `json:"target,omitempty"`                                                            // Content target hint for pool filtering
	Seed   int64  `json:"seed,omitempty"`                                                              // Explicit seed; 0 derives one

	// Judges
	StrictModel  string `json:"strict_model,omitempty"`                              // Model name for the strict judge
	LenientModel string `json:"lenient_model,omitempty"`                             // Model name for the lenient judge
	RefineModel  string `json:"refine_model,omitempty"`                              // Model name for refinement
	Threshold    int    `json:"threshold,omitempty" validate:"omitempty,min=1,max=10"` // Success score threshold
	MaxRounds    int    `json:"max_rounds,omitempty" validate:"omitempty,min=1"`     // Duel round budget

	// Evolution
	PopulationSize int `json:"population_size,omitempty" validate:"omitempty,min=2"` // Genomes per generation
	MaxGenerations int `json:"max_generations,omitempty" validate:"omitempty,min=1"` // Generation budget
	MaxConcurrent  int `json:"max_concurrent,omitempty" validate:"omitempty,min=1"`  // Parallel genome evaluations

	// Credentials and behavior
	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // Gemini API key (env: GEMINI_API_KEY)
	OpenAIAPIKey string `json:"openai_api_key,omitempty"` // OpenAI API key (env: OPENAI_API_KEY)
	DatabaseURL  string `json:"database_url,omitempty"`   // PostgreSQL connection URL (env: DATABASE_URL)
	Verbose      bool   `json:"verbose,omitempty"`        // Print detailed progress boxes
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: required fields are handled by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("config error: field %q fails %q validation", first.Field(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// FromEnv fills credential fields from the environment where the config file
// left them empty.
func (c *Config) FromEnv() {
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}
	if result.Target == "" {
		result.Target = defaults.Target
	}
	if result.StrictModel == "" {
		result.StrictModel = defaults.StrictModel
	}
	if result.LenientModel == "" {
		result.LenientModel = defaults.LenientModel
	}
	if result.RefineModel == "" {
		result.RefineModel = defaults.RefineModel
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Numeric fields: use default if zero
	if result.Seed == 0 {
		result.Seed = defaults.Seed
	}
	if result.Threshold == 0 {
		result.Threshold = defaults.Threshold
	}
	if result.MaxRounds == 0 {
		result.MaxRounds = defaults.MaxRounds
	}
	if result.PopulationSize == 0 {
		result.PopulationSize = defaults.PopulationSize
	}
	if result.MaxGenerations == 0 {
		result.MaxGenerations = defaults.MaxGenerations
	}
	if result.MaxConcurrent == 0 {
		result.MaxConcurrent = defaults.MaxConcurrent
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
