package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(f *runFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	f.register(cmd)
	return cmd
}

func TestResolve_DefaultsApply(t *testing.T) {
	var f runFlags
	cmd := newTestCommand(&f)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := f.resolve(cmd)
	require.NoError(t, err)

	assert.Equal(t, "balanced", cfg.Mode)
	assert.Equal(t, "gemini-2.5-pro", cfg.StrictModel)
	assert.Equal(t, 7, cfg.Threshold)
	assert.Equal(t, 10, cfg.PopulationSize)
}

func TestResolve_FlagsOverrideConfigFile(t *testing.T) {
	content := `{"mode": "stealth", "threshold": 6, "seed": 99}`
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	var f runFlags
	cmd := newTestCommand(&f)
	require.NoError(t, cmd.ParseFlags([]string{"--config", tmpFile, "--mode", "chaos"}))

	cfg, err := f.resolve(cmd)
	require.NoError(t, err)

	// Flag wins over file; untouched file values survive.
	assert.Equal(t, "chaos", cfg.Mode)
	assert.Equal(t, 6, cfg.Threshold)
	assert.Equal(t, int64(99), cfg.Seed)
}

func TestResolve_EnvFillsCredentialGaps(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")

	var f runFlags
	cmd := newTestCommand(&f)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := f.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.GeminiAPIKey)
}

func TestResolve_InvalidModeRejected(t *testing.T) {
	var f runFlags
	cmd := newTestCommand(&f)
	require.NoError(t, cmd.ParseFlags([]string{"--mode", "reckless"}))

	_, err := f.resolve(cmd)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Mode")
}

func TestResolve_MissingConfigFile(t *testing.T) {
	var f runFlags
	cmd := newTestCommand(&f)
	require.NoError(t, cmd.ParseFlags([]string{"--config", "/nonexistent/config.json"}))

	_, err := f.resolve(cmd)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
