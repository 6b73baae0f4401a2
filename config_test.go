package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bvisness/camp/inspect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "camp.toml")
	require.NoError(t, os.WriteFile(file, []byte(text), 0o644))
	return file
}

func TestLoadConfig(t *testing.T) {
	t.Run("fields", func(t *testing.T) {
		cfg := defaultConfig()
		file := writeConfig(t, "Format = \"yaml\"\nVerbose = true\n")
		require.NoError(t, loadConfig(file, &cfg))

		assert.Equal(t, "yaml", cfg.Format)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "camp> ", cfg.Prompt)
		f, err := cfg.format()
		require.NoError(t, err)
		assert.Equal(t, inspect.FormatYAML, f)
	})

	t.Run("unknown field", func(t *testing.T) {
		cfg := defaultConfig()
		file := writeConfig(t, "Colour = \"red\"\n")
		err := loadConfig(file, &cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), file)
		assert.Contains(t, err.Error(), "Colour")
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := defaultConfig()
		require.ErrorIs(t, loadConfig(filepath.Join(t.TempDir(), "nope.toml"), &cfg), os.ErrNotExist)
	})
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.Prompt = ">> "
	out, err := dumpConfig(cfg)
	require.NoError(t, err)

	var back Config
	require.NoError(t, loadConfig(writeConfig(t, string(out)), &back))
	assert.Equal(t, cfg, back)
}

func TestHistoryPath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "hist")
	assert.Equal(t, abs, Config{History: abs}.historyPath())
	assert.Equal(t, "", Config{}.historyPath())

	rel := Config{History: ".camp_history"}.historyPath()
	assert.True(t, filepath.IsAbs(rel) || rel == ".camp_history")
}
