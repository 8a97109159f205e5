package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/typecov/internal/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.0, cfg.Minimum)
	assert.True(t, cfg.Gate)
	assert.Equal(t, 1, cfg.Parallel)
	assert.Equal(t, []string{".php"}, cfg.Extensions)
	assert.Equal(t, "@typecov-ignore", cfg.IgnoreMarker)
	assert.Equal(t, m.UnknownAbort, cfg.UnknownDiagnostics)
	assert.Equal(t, "vendor/bin/phpstan", cfg.Analyzer.Command)
	assert.Equal(t, "only ", cfg.Analyzer.PercentageAnchor)
	assert.Equal(t, 2, cfg.Analyzer.PercentageToken)

	require.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		cfg, err := Load(filepath.Join("testdata", "typecov.yaml"), true)
		require.NoError(t, err)

		assert.Equal(t, 85.0, cfg.Minimum)
		assert.True(t, cfg.Gate)
		assert.True(t, cfg.HideComplete)
		assert.Equal(t, 8, cfg.Parallel)
		assert.Equal(t, []string{".php", ".phtml"}, cfg.Extensions)
		assert.Equal(t, []string{`^tests/fixtures/`, `\.blade\.php$`}, cfg.Exclude)
		assert.Equal(t, "@no-type-check", cfg.IgnoreMarker)
		assert.Equal(t, m.UnknownSkip, cfg.UnknownDiagnostics)
		assert.Equal(t, "tools/phpstan", cfg.Analyzer.Command)
		assert.Equal(t, []string{"analyse", "-c", "phpstan.neon", "--error-format=json", "--no-progress"}, cfg.Analyzer.Args)
		assert.Equal(t, "build/typecov.json", cfg.Report.JSON)
		assert.Empty(t, cfg.Report.YAML)
		assert.Equal(t, "build/typecov.sarif", cfg.Report.Sarif)
		assert.Equal(t, "debug", cfg.Logger.Level)

		// keys absent from the file keep their defaults
		assert.Equal(t, "only ", cfg.Analyzer.PercentageAnchor)
		assert.Equal(t, 2, cfg.Analyzer.PercentageToken)

		require.NoError(t, Validate(cfg))
	})

	t.Run("missing optional file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), DefaultPath), false)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("missing required file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "custom.yaml"), true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DefaultPath)
		require.NoError(t, os.WriteFile(path, []byte("min: [80\n"), 0o644))

		_, err := Load(path, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"minimum below zero", func(c *Config) { c.Minimum = -1 }},
		{"minimum above hundred", func(c *Config) { c.Minimum = 100.5 }},
		{"zero parallel", func(c *Config) { c.Parallel = 0 }},
		{"no extensions", func(c *Config) { c.Extensions = nil }},
		{"bad exclude", func(c *Config) { c.Exclude = []string{"[a-"} }},
		{"empty marker", func(c *Config) { c.IgnoreMarker = "" }},
		{"unknown policy", func(c *Config) { c.UnknownDiagnostics = "ignore" }},
		{"no analyzer", func(c *Config) { c.Analyzer.Command = "" }},
		{"negative token", func(c *Config) { c.Analyzer.PercentageToken = -1 }},
		{"empty anchor", func(c *Config) { c.Analyzer.PercentageAnchor = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			assert.ErrorIs(t, Validate(cfg), ErrInvalidConfig)
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil), ErrInvalidConfig)
	})

	t.Run("sarif input replaces command", func(t *testing.T) {
		cfg := Default()
		cfg.Analyzer.Command = ""
		cfg.Analyzer.SarifInput = "phpstan.sarif"

		assert.NoError(t, Validate(cfg))
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		cfg := Default()
		cfg.Minimum = 100

		assert.NoError(t, Validate(cfg))
	})
}
