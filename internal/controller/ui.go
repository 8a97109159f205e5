// Package controller provides output adapters for displaying type coverage results.
package controller

import (
	m "github.com/mouse-blink/typecov/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeList StartMode = iota
	ModeCheck
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode         StartMode
	hideComplete bool
}

// WithListMode sets the UI to source listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithCheckMode sets the UI to live check mode.
func WithCheckMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeCheck
	}
}

// WithViewMode sets the UI to replay a stored report.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

// WithHideComplete hides files whose coverage is exactly 100%.
func WithHideComplete() StartOption {
	return func(c *StartConfig) {
		c.hideComplete = true
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeCheck}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI renders the progress and outcome of a run.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(options ...StartOption) error
	Close()
	Wait() // Wait for UI to finish rendering
	DisplaySources(sources []m.SourceFile) error
	DisplayStartInfo(files int, threads int)
	DisplayFileResult(result m.FileCoverage)
	DisplaySummary(summary m.Summary)
}
