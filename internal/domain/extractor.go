package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	m "github.com/mouse-blink/typecov/internal/model"
)

const (
	// DefaultPercentageAnchor precedes the coverage figures in analyzer messages:
	// "Out of 6 possible param types, only 3 - 50.0 % actually have it."
	DefaultPercentageAnchor = "only "
	// DefaultPercentageToken is the index of the percentage among the
	// space-separated tokens following the anchor ("3", "-", "50.0", ...).
	DefaultPercentageToken = 2
)

// PercentageExtractor reads the file-level coverage percentage embedded in a
// diagnostic message.
type PercentageExtractor struct {
	Anchor      string
	TokenOffset int
}

// NewPercentageExtractor constructs an extractor. Empty or negative values
// fall back to the defaults.
func NewPercentageExtractor(anchor string, tokenOffset int) PercentageExtractor {
	if anchor == "" {
		anchor = DefaultPercentageAnchor
	}

	if tokenOffset < 0 {
		tokenOffset = DefaultPercentageToken
	}

	return PercentageExtractor{Anchor: anchor, TokenOffset: tokenOffset}
}

// Extract returns the percentage as an integer in [0,100]. Fractional values
// are truncated toward zero.
func (e PercentageExtractor) Extract(d m.Diagnostic) (int, error) {
	_, rest, found := strings.Cut(d.Message, e.Anchor)
	if !found {
		return 0, e.malformed(d, fmt.Sprintf("anchor %q not found", e.Anchor))
	}

	tokens := strings.Split(rest, " ")
	if e.TokenOffset >= len(tokens) {
		return 0, e.malformed(d, fmt.Sprintf("no token at offset %d", e.TokenOffset))
	}

	token := strings.TrimSuffix(strings.TrimSpace(tokens[e.TokenOffset]), "%")

	value, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(value) {
		return 0, e.malformed(d, fmt.Sprintf("token %q is not a number", token))
	}

	percentage := int(math.Trunc(value))
	if percentage < 0 || percentage > 100 {
		return 0, e.malformed(d, fmt.Sprintf("percentage %d out of range", percentage))
	}

	return percentage, nil
}

func (e PercentageExtractor) malformed(d m.Diagnostic, reason string) error {
	return fmt.Errorf("%w at %s:%d (%s): %q", ErrMalformedDiagnostic, d.File, d.Line, reason, d.Message)
}
