package domain

import (
	"fmt"
	"strings"

	m "github.com/mouse-blink/typecov/internal/model"
)

// categoryMarkers maps each category to the text the analyzer uses for it.
// Order matters: the first marker found in a message wins.
var categoryMarkers = []struct {
	category m.Category
	marker   string
}{
	{m.CategoryProperty, "property types"},
	{m.CategoryParameter, "param types"},
	{m.CategoryReturnType, "return types"},
}

// Classify resolves the coverage category of a diagnostic. The returned error
// carries no percentage; see Interpreter for the full conversion.
func Classify(d m.Diagnostic) (m.ClassifiedError, error) {
	for _, cm := range categoryMarkers {
		if strings.Contains(d.Message, cm.marker) {
			return m.ClassifiedError{
				File:     d.File,
				Line:     d.Line,
				Category: cm.category,
			}, nil
		}
	}

	return m.ClassifiedError{}, fmt.Errorf("%w at %s:%d: %q", ErrUnrecognizedDiagnostic, d.File, d.Line, d.Message)
}
