package adapter

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/owenrumney/go-sarif/v2/sarif"

	m "github.com/mouse-blink/typecov/internal/model"
)

const (
	sarifToolName = "typecov"
	sarifToolURI  = "https://github.com/mouse-blink/typecov"
	sarifLevel    = "warning"
)

var sarifRuleDescriptions = map[m.Category]string{
	m.CategoryProperty:   "Class property is missing a type declaration.",
	m.CategoryParameter:  "Parameter is missing a type declaration.",
	m.CategoryReturnType: "Function or method is missing a return type declaration.",
}

// SarifReporter writes one SARIF result per uncovered declaration. Suppressed
// declarations are kept with an inSource suppression so that code scanning
// dashboards show them as dismissed.
type SarifReporter struct {
	path m.Path

	mu      sync.Mutex
	results []m.FileCoverage
}

// NewSarifReporter creates a reporter writing a SARIF 2.1.0 log to path.
func NewSarifReporter(path m.Path) *SarifReporter {
	return &SarifReporter{path: path}
}

// Append implements Reporter.
func (r *SarifReporter) Append(result m.FileCoverage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, result)
}

// Output implements Reporter.
func (r *SarifReporter) Output() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReportSerialization, err)
	}

	run := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)
	for _, category := range m.Categories {
		run.AddRule(sarifRuleID(category)).
			WithName(category.String() + "-type-coverage").
			WithDescription(sarifRuleDescriptions[category]).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: sarifLevel})
	}

	for _, fc := range r.results {
		for _, e := range fc.Errors {
			run.AddResult(sarifResult(fc, e))
		}

		for _, e := range fc.SuppressedErrors {
			res := sarifResult(fc, e)
			res.AddSuppression(sarif.NewSuppression("inSource"))
			run.AddResult(res)
		}
	}

	report.AddRun(run)

	var buf bytes.Buffer
	if err := report.PrettyWrite(&buf); err != nil {
		return fmt.Errorf("%w: %w", ErrReportSerialization, err)
	}

	return writeReportFile(r.path, buf.Bytes())
}

func sarifRuleID(category m.Category) string {
	return "typecov/" + category.ShortCode()
}

func sarifResult(fc m.FileCoverage, e m.ClassifiedError) *sarif.Result {
	location := sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(string(fc.Source.ShortPath))).
			WithRegion(sarif.NewRegion().WithStartLine(e.Line)),
	)

	msg := fmt.Sprintf("Missing %s type on line %d (%s type coverage %d%%).", e.Category, e.Line, e.Category, e.Coverage)

	return sarif.NewRuleResult(sarifRuleID(e.Category)).
		WithMessage(sarif.NewTextMessage(msg)).
		WithLevel(sarifLevel).
		WithLocations([]*sarif.Location{location})
}
