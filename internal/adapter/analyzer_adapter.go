package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	m "github.com/mouse-blink/typecov/internal/model"
)

// DefaultAnalyzerCommand and DefaultAnalyzerArgs invoke PHPStan with its JSON
// error format; the analyzed file is appended as the last argument.
var (
	DefaultAnalyzerCommand = "vendor/bin/phpstan"
	DefaultAnalyzerArgs    = []string{"analyse", "--error-format=json", "--no-progress"}
)

// Analyzer is the boundary to the external static-analysis engine.
type Analyzer interface {
	// Analyze returns the raw diagnostics reported for one file.
	Analyze(ctx context.Context, path m.Path) ([]m.Diagnostic, error)
}

// CommandRunner executes an external command and returns its standard output
// and standard error.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)

// CommandAnalyzer runs the analyzer binary once per file.
type CommandAnalyzer struct {
	command string
	args    []string
	dir     string
	run     CommandRunner
}

// NewCommandAnalyzer constructs a CommandAnalyzer. An empty command selects the
// PHPStan defaults.
func NewCommandAnalyzer(command string, args []string, dir string) *CommandAnalyzer {
	if command == "" {
		command = DefaultAnalyzerCommand
		if args == nil {
			args = DefaultAnalyzerArgs
		}
	}

	return &CommandAnalyzer{command: command, args: args, dir: dir, run: runCommand}
}

// Analyze runs the analyzer on path and decodes its JSON output.
func (a *CommandAnalyzer) Analyze(ctx context.Context, path m.Path) ([]m.Diagnostic, error) {
	args := make([]string, 0, len(a.args)+1)
	args = append(args, a.args...)
	args = append(args, string(path))

	stdout, stderr, runErr := a.run(ctx, a.dir, a.command, args...)

	// The analyzer exits non-zero whenever it reports errors, so the output is
	// decoded first and the exit status only matters when there is none.
	if len(bytes.TrimSpace(stdout)) == 0 {
		if runErr != nil {
			return nil, fmt.Errorf("analyzer %s failed on %s: %w: %s", a.command, path, runErr, strings.TrimSpace(string(stderr)))
		}

		return nil, fmt.Errorf("analyzer %s produced no output for %s", a.command, path)
	}

	diagnostics, err := decodeAnalyzerOutput(stdout, path)
	if err != nil {
		return nil, fmt.Errorf("analyzer %s output for %s: %w", a.command, path, err)
	}

	return diagnostics, nil
}

func runCommand(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	// #nosec G204 - the analyzer command comes from the user's own configuration
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.Bytes(), stderr.Bytes(), err
}

type analyzerOutput struct {
	Files  json.RawMessage `json:"files"`
	Errors []string        `json:"errors"`
}

type analyzerFile struct {
	Messages []analyzerMessage `json:"messages"`
}

type analyzerMessage struct {
	Message string `json:"message"`
	Line    *int   `json:"line"`
}

// decodeAnalyzerOutput reads the PHPStan JSON error format. Messages are
// returned per file in path order, then in the analyzer's own order.
func decodeAnalyzerOutput(data []byte, path m.Path) ([]m.Diagnostic, error) {
	var out analyzerOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if len(out.Errors) > 0 {
		return nil, errors.New(strings.Join(out.Errors, "; "))
	}

	files := map[string]analyzerFile{}

	// An empty file map is encoded as a JSON array.
	raw := bytes.TrimSpace(out.Files)
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &files); err != nil {
			return nil, fmt.Errorf("decode files: %w", err)
		}
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}

	sort.Strings(names)

	diagnostics := []m.Diagnostic{}

	for _, name := range names {
		for _, msg := range files[name].Messages {
			line := 0
			if msg.Line != nil {
				line = *msg.Line
			}

			diagnostics = append(diagnostics, m.Diagnostic{
				File:    path,
				Line:    line,
				Message: msg.Message,
			})
		}
	}

	return diagnostics, nil
}
