package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/typecov/internal/model"
)

// ReportFormat is the format tag written at the top of every report document.
const ReportFormat = "typecov"

var (
	// ErrReportSerialization is returned when a report cannot be encoded or decoded.
	ErrReportSerialization = errors.New("report serialization failed")
	// ErrReportWrite is returned when a report cannot be written to its destination.
	ErrReportWrite = errors.New("report write failed")
)

// Reporter receives every file result of a run, in discovery order, and
// persists them once the run is over.
type Reporter interface {
	Append(result m.FileCoverage)
	Output() error
}

// ReportDocument is the persisted shape of a run.
type ReportDocument struct {
	Format   string           `json:"format" yaml:"format"`
	Settings m.ReportSettings `json:"settings" yaml:"settings"`
	Result   []ReportEntry    `json:"result" yaml:"result"`
	Total    float64          `json:"total" yaml:"total"`
}

// ReportEntry is one file of a ReportDocument.
type ReportEntry struct {
	File                  string   `json:"file" yaml:"file"`
	UncoveredLines        []string `json:"uncoveredLines" yaml:"uncoveredLines"`
	UncoveredLinesIgnored []string `json:"uncoveredLinesIgnored" yaml:"uncoveredLinesIgnored"`
	Percentage            int      `json:"percentage" yaml:"percentage"`
}

// NewReportEntry converts a file result to its persisted form.
func NewReportEntry(result m.FileCoverage) ReportEntry {
	return ReportEntry{
		File:                  string(result.Source.ShortPath),
		UncoveredLines:        result.UncoveredCodes(),
		UncoveredLinesIgnored: result.SuppressedCodes(),
		Percentage:            result.TotalCoverage,
	}
}

// FileCoverage rebuilds a file result from its persisted form. Only the
// fields the document carries are restored.
func (e ReportEntry) FileCoverage() (m.FileCoverage, error) {
	active, err := decodeCodes(m.Path(e.File), e.UncoveredLines)
	if err != nil {
		return m.FileCoverage{}, err
	}

	suppressed, err := decodeCodes(m.Path(e.File), e.UncoveredLinesIgnored)
	if err != nil {
		return m.FileCoverage{}, err
	}

	return m.FileCoverage{
		Source:           m.SourceFile{FullPath: m.Path(e.File), ShortPath: m.Path(e.File)},
		Errors:           active,
		SuppressedErrors: suppressed,
		TotalCoverage:    e.Percentage,
	}, nil
}

func decodeCodes(file m.Path, codes []string) ([]m.ClassifiedError, error) {
	out := make([]m.ClassifiedError, 0, len(codes))

	for _, code := range codes {
		category, line, err := m.ParseCode(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReportSerialization, file, err)
		}

		out = append(out, m.ClassifiedError{File: file, Line: line, Category: category})
	}

	return out, nil
}

// roundTotal rounds the overall coverage to two decimals.
func roundTotal(v float64) float64 {
	return math.Round(v*100) / 100
}

// documentBuffer collects entries for the file based reporters.
type documentBuffer struct {
	mu       sync.Mutex
	settings m.ReportSettings
	entries  []ReportEntry
	totals   []int
}

func (b *documentBuffer) append(result m.FileCoverage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, NewReportEntry(result))
	b.totals = append(b.totals, result.TotalCoverage)
}

func (b *documentBuffer) document() (ReportDocument, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) == 0 {
		return ReportDocument{}, fmt.Errorf("%w: no results recorded", ErrReportSerialization)
	}

	sum := 0
	for _, t := range b.totals {
		sum += t
	}

	entries := make([]ReportEntry, len(b.entries))
	copy(entries, b.entries)

	return ReportDocument{
		Format:   ReportFormat,
		Settings: b.settings,
		Result:   entries,
		Total:    roundTotal(float64(sum) / float64(len(b.totals))),
	}, nil
}

// writeReportFile writes data to path, creating parent directories.
func writeReportFile(path m.Path, data []byte) error {
	dir := filepath.Dir(string(path))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}

	// #nosec G306 -- reports are meant to be shared with CI tooling.
	if err := os.WriteFile(string(path), data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}

	return nil
}

// LoadReport reads a JSON or YAML report written by JSONReporter or
// YAMLReporter. The format is chosen by extension; JSON is the fallback.
func LoadReport(path m.Path) (ReportDocument, error) {
	data, err := os.ReadFile(string(path)) // #nosec G304 -- user supplied report path
	if err != nil {
		return ReportDocument{}, fmt.Errorf("read report %s: %w", path, err)
	}

	var doc ReportDocument

	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}

	if err != nil {
		return ReportDocument{}, fmt.Errorf("%w: %s: %w", ErrReportSerialization, path, err)
	}

	if doc.Format != ReportFormat {
		return ReportDocument{}, fmt.Errorf("%w: %s: unexpected format %q", ErrReportSerialization, path, doc.Format)
	}

	return doc, nil
}

// NullReporter discards everything.
type NullReporter struct{}

// NewNullReporter creates a Reporter that records nothing.
func NewNullReporter() *NullReporter {
	return &NullReporter{}
}

// Append implements Reporter.
func (*NullReporter) Append(m.FileCoverage) {}

// Output implements Reporter.
func (*NullReporter) Output() error { return nil }

// MultiReporter fans results out to several reporters.
type MultiReporter struct {
	reporters []Reporter
}

// NewMultiReporter combines reporters. Output runs every reporter and joins
// their errors.
func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{reporters: reporters}
}

// Append implements Reporter.
func (r *MultiReporter) Append(result m.FileCoverage) {
	for _, rep := range r.reporters {
		rep.Append(result)
	}
}

// Output implements Reporter.
func (r *MultiReporter) Output() error {
	var errs []error

	for _, rep := range r.reporters {
		if err := rep.Output(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ReporterOptions selects the sinks built by NewReporter.
type ReporterOptions struct {
	JSON     m.Path
	YAML     m.Path
	Sarif    m.Path
	Settings m.ReportSettings
}

// NewReporter builds the reporter for the given destinations. Without any
// destination it returns a NullReporter.
func NewReporter(opts ReporterOptions) Reporter {
	var reporters []Reporter

	if opts.JSON != "" {
		reporters = append(reporters, NewJSONReporter(opts.JSON, opts.Settings))
	}

	if opts.YAML != "" {
		reporters = append(reporters, NewYAMLReporter(opts.YAML, opts.Settings))
	}

	if opts.Sarif != "" {
		reporters = append(reporters, NewSarifReporter(opts.Sarif))
	}

	switch len(reporters) {
	case 0:
		return NewNullReporter()
	case 1:
		return reporters[0]
	default:
		return NewMultiReporter(reporters...)
	}
}
