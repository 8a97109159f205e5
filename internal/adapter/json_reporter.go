package adapter

import (
	"encoding/json"
	"fmt"

	m "github.com/mouse-blink/typecov/internal/model"
)

// JSONReporter writes the run as a JSON ReportDocument.
type JSONReporter struct {
	path m.Path
	buf  documentBuffer
}

// NewJSONReporter creates a reporter writing to path.
func NewJSONReporter(path m.Path, settings m.ReportSettings) *JSONReporter {
	return &JSONReporter{
		path: path,
		buf:  documentBuffer{settings: settings},
	}
}

// Append implements Reporter.
func (r *JSONReporter) Append(result m.FileCoverage) {
	r.buf.append(result)
}

// Output implements Reporter.
func (r *JSONReporter) Output() error {
	doc, err := r.buf.document()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReportSerialization, err)
	}

	return writeReportFile(r.path, append(data, '\n'))
}
