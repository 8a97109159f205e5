package domain

import (
	"strings"

	m "github.com/mouse-blink/typecov/internal/model"
)

// DefaultIgnoreMarker opts a source line out of active reporting.
const DefaultIgnoreMarker = "@typecov-ignore"

// SuppressionFilter decides which classified errors are silenced by an inline
// marker on the line they point to. Suppression only affects what is
// displayed; coverage numbers are computed from every error.
type SuppressionFilter struct {
	marker string
}

// NewSuppressionFilter creates a filter for the given marker, falling back to
// DefaultIgnoreMarker when empty.
func NewSuppressionFilter(marker string) SuppressionFilter {
	if marker == "" {
		marker = DefaultIgnoreMarker
	}

	return SuppressionFilter{marker: marker}
}

// Marker returns the literal token the filter looks for.
func (f SuppressionFilter) Marker() string {
	return f.marker
}

// IsSuppressed reports whether the 1-indexed line of e contains the marker.
// Lines outside the file are never suppressed.
func (f SuppressionFilter) IsSuppressed(e m.ClassifiedError, lines []string) bool {
	if e.Line <= 0 || e.Line > len(lines) {
		return false
	}

	return strings.Contains(lines[e.Line-1], f.marker)
}

// Partition splits errs into active and suppressed, preserving input order.
func (f SuppressionFilter) Partition(errs []m.ClassifiedError, lines []string) ([]m.ClassifiedError, []m.ClassifiedError) {
	active := make([]m.ClassifiedError, 0, len(errs))

	var suppressed []m.ClassifiedError

	for _, e := range errs {
		if f.IsSuppressed(e, lines) {
			suppressed = append(suppressed, e)
			continue
		}

		active = append(active, e)
	}

	return active, suppressed
}

// SplitLines splits file content into lines, accepting both \n and \r\n.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}

	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")

	return strings.Split(text, "\n")
}
