// Package config loads the optional .typecov.yaml file and holds the settings
// of a run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/typecov/internal/model"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = ".typecov.yaml"

// Config is the full set of run settings.
type Config struct {
	Minimum            float64         `yaml:"min"`
	Gate               bool            `yaml:"gate"`
	HideComplete       bool            `yaml:"hide_complete"`
	Parallel           int             `yaml:"parallel"`
	Extensions         []string        `yaml:"extensions"`
	Exclude            []string        `yaml:"exclude"`
	IgnoreMarker       string          `yaml:"ignore_marker"`
	UnknownDiagnostics m.UnknownPolicy `yaml:"unknown_diagnostics"`
	Analyzer           Analyzer        `yaml:"analyzer"`
	Report             Report          `yaml:"report"`
	Logger             Logger          `yaml:"logger"`
}

// Analyzer configures the external static-analysis engine.
type Analyzer struct {
	Command          string   `yaml:"command"`
	Args             []string `yaml:"args"`
	PercentageAnchor string   `yaml:"percentage_anchor"`
	PercentageToken  int      `yaml:"percentage_token"`
	// SarifInput replays diagnostics from an earlier SARIF log instead of
	// running Command.
	SarifInput string `yaml:"sarif_input"`
}

// Report lists the report destinations. Empty paths are disabled.
type Report struct {
	JSON  string `yaml:"json"`
	YAML  string `yaml:"yaml"`
	Sarif string `yaml:"sarif"`
}

// Logger configures logging.
type Logger struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Gate:               true,
		Parallel:           1,
		Extensions:         []string{".php"},
		IgnoreMarker:       "@typecov-ignore",
		UnknownDiagnostics: m.UnknownAbort,
		Analyzer: Analyzer{
			Command:          "vendor/bin/phpstan",
			Args:             []string{"analyse", "--error-format=json", "--no-progress"},
			PercentageAnchor: "only ",
			PercentageToken:  2,
		},
		Logger: Logger{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error unless
// required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}

		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}
