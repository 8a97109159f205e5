package config

import (
	"errors"
	"fmt"
	"regexp"

	m "github.com/mouse-blink/typecov/internal/model"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks that cfg describes a runnable check.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: configuration object is nil", ErrInvalidConfig)
	}

	if cfg.Minimum < 0 || cfg.Minimum > 100 {
		return fmt.Errorf("%w: min must be between 0 and 100: %v", ErrInvalidConfig, cfg.Minimum)
	}

	if cfg.Parallel < 1 {
		return fmt.Errorf("%w: parallel must be at least 1: %d", ErrInvalidConfig, cfg.Parallel)
	}

	if len(cfg.Extensions) == 0 {
		return fmt.Errorf("%w: extensions must not be empty", ErrInvalidConfig)
	}

	for _, pattern := range cfg.Exclude {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w: exclude pattern %q: %w", ErrInvalidConfig, pattern, err)
		}
	}

	if cfg.IgnoreMarker == "" {
		return fmt.Errorf("%w: ignore_marker must not be empty", ErrInvalidConfig)
	}

	switch cfg.UnknownDiagnostics {
	case m.UnknownAbort, m.UnknownSkip:
	default:
		return fmt.Errorf("%w: unknown_diagnostics must be %q or %q: %q",
			ErrInvalidConfig, m.UnknownAbort, m.UnknownSkip, cfg.UnknownDiagnostics)
	}

	return validateAnalyzer(&cfg.Analyzer)
}

func validateAnalyzer(a *Analyzer) error {
	if a.Command == "" && a.SarifInput == "" {
		return fmt.Errorf("%w: analyzer.command must not be empty", ErrInvalidConfig)
	}

	if a.PercentageToken < 0 {
		return fmt.Errorf("%w: analyzer.percentage_token must not be negative: %d", ErrInvalidConfig, a.PercentageToken)
	}

	if a.PercentageAnchor == "" {
		return fmt.Errorf("%w: analyzer.percentage_anchor must not be empty", ErrInvalidConfig)
	}

	return nil
}
