package controller

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	m "github.com/mouse-blink/typecov/internal/model"
)

const (
	defaultLineWidth = 80
	minDots          = 3
)

// resultDetail renders the codes and percentage shown after a file path, e.g.
// "pr12, pa14 (rt3) 83%".
func resultDetail(result m.FileCoverage) string {
	parts := make([]string, 0, 3)

	if codes := result.UncoveredCodes(); len(codes) > 0 {
		parts = append(parts, strings.Join(codes, ", "))
	}

	if codes := result.SuppressedCodes(); len(codes) > 0 {
		parts = append(parts, "("+strings.Join(codes, ", ")+")")
	}

	parts = append(parts, fmt.Sprintf("%d%%", result.TotalCoverage))

	return strings.Join(parts, " ")
}

// dottedLine joins path and detail with a run of dots so that the line fills
// width. The path is truncated when both do not fit.
func dottedLine(path, detail string, width int) string {
	if width <= 0 {
		width = defaultLineWidth
	}

	room := width - lipgloss.Width(detail) - 2
	if room < minDots+1 {
		return path + " " + strings.Repeat(".", minDots) + " " + detail
	}

	path = truncateToWidth(path, room-minDots)
	dots := room - lipgloss.Width(path)

	return path + " " + strings.Repeat(".", dots) + " " + detail
}

// verdictLine is the final line of a check.
func verdictLine(summary m.Summary) string {
	if !summary.Passed {
		return fmt.Sprintf("Type coverage below expected: %.1f%%. Minimum: %.1f%%", summary.Overall, summary.Minimum)
	}

	return fmt.Sprintf("Total: %.1f %%", summary.Overall)
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	const ellipsis = "…"

	maxWidth := width - lipgloss.Width(ellipsis)
	if maxWidth <= 0 {
		return ellipsis
	}

	// Keep the tail of the path, it carries the file name.
	runes := []rune(text)
	currentWidth := 0
	start := len(runes)

	for start > 0 {
		rWidth := runewidth.RuneWidth(runes[start-1])
		if currentWidth+rWidth > maxWidth {
			break
		}

		currentWidth += rWidth
		start--
	}

	return ellipsis + string(runes[start:])
}
