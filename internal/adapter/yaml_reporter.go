package adapter

import (
	"fmt"

	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/typecov/internal/model"
)

// YAMLReporter writes the same document as JSONReporter, encoded as YAML.
type YAMLReporter struct {
	path m.Path
	buf  documentBuffer
}

// NewYAMLReporter creates a reporter writing to path.
func NewYAMLReporter(path m.Path, settings m.ReportSettings) *YAMLReporter {
	return &YAMLReporter{
		path: path,
		buf:  documentBuffer{settings: settings},
	}
}

// Append implements Reporter.
func (r *YAMLReporter) Append(result m.FileCoverage) {
	r.buf.append(result)
}

// Output implements Reporter.
func (r *YAMLReporter) Output() error {
	doc, err := r.buf.document()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReportSerialization, err)
	}

	return writeReportFile(r.path, data)
}
