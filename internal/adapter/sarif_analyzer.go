package adapter

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	m "github.com/mouse-blink/typecov/internal/model"
)

// SarifAnalyzer serves diagnostics from a SARIF log written by an earlier
// analyzer run instead of invoking the analyzer itself.
type SarifAnalyzer struct {
	byPath map[m.Path][]m.Diagnostic
}

// NewSarifAnalyzer loads the SARIF log at reportPath. Relative artifact URIs
// are resolved against base.
func NewSarifAnalyzer(reportPath m.Path, base m.Path) (*SarifAnalyzer, error) {
	report, err := sarif.Open(string(reportPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read SARIF log %s: %w", reportPath, err)
	}

	return newSarifAnalyzerFromReport(report, base)
}

func newSarifAnalyzerFromReport(report *sarif.Report, base m.Path) (*SarifAnalyzer, error) {
	absBase, err := filepath.Abs(string(base))
	if err != nil {
		return nil, err
	}

	a := &SarifAnalyzer{byPath: make(map[m.Path][]m.Diagnostic)}

	for _, run := range report.Runs {
		for _, result := range run.Results {
			path, line, ok := sarifResultLocation(result, absBase)
			if !ok {
				continue
			}

			message := ""
			if result.Message.Text != nil {
				message = *result.Message.Text
			}

			a.byPath[path] = append(a.byPath[path], m.Diagnostic{
				File:    path,
				Line:    line,
				Message: message,
			})
		}
	}

	return a, nil
}

// Analyze returns the diagnostics recorded for path. Files absent from the log
// have no diagnostics.
func (a *SarifAnalyzer) Analyze(ctx context.Context, path m.Path) ([]m.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(string(path))
	if err != nil {
		return nil, err
	}

	diagnostics := a.byPath[m.Path(filepath.Clean(abs))]
	out := make([]m.Diagnostic, len(diagnostics))
	copy(out, diagnostics)

	return out, nil
}

func sarifResultLocation(result *sarif.Result, base string) (m.Path, int, bool) {
	if result == nil || len(result.Locations) == 0 {
		return "", 0, false
	}

	loc := result.Locations[0].PhysicalLocation
	if loc == nil || loc.ArtifactLocation == nil || loc.ArtifactLocation.URI == nil {
		return "", 0, false
	}

	uri := *loc.ArtifactLocation.URI
	if strings.HasPrefix(uri, "file://") {
		if parsed, err := url.Parse(uri); err == nil {
			uri = parsed.Path
		}
	}

	path := filepath.FromSlash(uri)
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}

	line := 0
	if loc.Region != nil && loc.Region.StartLine != nil {
		line = *loc.Region.StartLine
	}

	return m.Path(filepath.Clean(path)), line, true
}
