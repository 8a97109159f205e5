// Package logger builds the hclog logger shared by every command.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "TYPECOV_LOG_LEVEL"

// NewLogger creates a logger writing to output. The level is taken from
// flagLevel, then the TYPECOV_LOG_LEVEL environment variable, then
// configLevel, and defaults to INFO.
func NewLogger(name, flagLevel, configLevel string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      output,
		Level:       determineLogLevel(flagLevel, configLevel, output),
	})
}

func determineLogLevel(flagLevel, configLevel string, output io.Writer) hclog.Level {
	level := configLevel
	if env := os.Getenv(EnvLevel); env != "" {
		level = env
	}

	if flagLevel != "" {
		level = flagLevel
	}

	if level == "" {
		return hclog.Info
	}

	parsed, ok := parseLogLevel(strings.ToUpper(level))
	if !ok {
		hclog.New(&hclog.LoggerOptions{
			Level:       hclog.Warn,
			DisableTime: true,
			Output:      output,
		}).Warn("unrecognized log level, defaulting to INFO", "providedLevel", level)
	}

	return parsed
}

// parseLogLevel converts a level name to hclog.Level.
func parseLogLevel(levelStr string) (hclog.Level, bool) {
	switch levelStr {
	case "TRACE":
		return hclog.Trace, true
	case "DEBUG":
		return hclog.Debug, true
	case "INFO":
		return hclog.Info, true
	case "WARN":
		return hclog.Warn, true
	case "ERROR":
		return hclog.Error, true
	case "OFF":
		return hclog.Off, true
	default:
		return hclog.Info, false
	}
}
