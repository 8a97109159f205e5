package controller

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/mouse-blink/typecov/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd    *cobra.Command
	config StartConfig
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd, config: newStartConfig(nil)}
}

// Start initializes the UI.
func (s *SimpleUI) Start(options ...StartOption) error {
	s.config = newStartConfig(options)
	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {}

// Wait returns immediately, output is written synchronously.
func (s *SimpleUI) Wait() {}

// DisplaySources prints the discovered files as a table.
func (s *SimpleUI) DisplaySources(sources []m.SourceFile) error {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT})

	for _, source := range sources {
		table.Append([]string{string(source.ShortPath)})
	}

	table.SetFooter([]string{fmt.Sprintf("Total Files %d", len(sources))})
	table.Render()
	s.printf("\n%s", tableBuffer.String())

	return nil
}

// DisplayStartInfo announces the run.
func (s *SimpleUI) DisplayStartInfo(files int, threads int) {
	s.printf("Analyzing %d file(s) with %d worker(s)\n\n", files, threads)
}

// DisplayFileResult prints one dotted result line.
func (s *SimpleUI) DisplayFileResult(result m.FileCoverage) {
	if s.config.hideComplete && result.Complete() {
		return
	}

	s.printf("%s\n", dottedLine(string(result.Source.ShortPath), resultDetail(result), defaultLineWidth))
}

// DisplaySummary prints the category table and the verdict.
func (s *SimpleUI) DisplaySummary(summary m.Summary) {
	if summary.Categorized {
		var tableBuffer bytes.Buffer

		table := tablewriter.NewWriter(&tableBuffer)
		table.SetHeader([]string{"Category", "Coverage"})
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

		for _, row := range categoryRows(summary) {
			table.Append(row)
		}

		table.SetFooter([]string{fmt.Sprintf("Files %d", len(summary.Results)), fmt.Sprintf("%.2f%%", summary.Overall)})
		table.Render()
		s.printf("\n%s", tableBuffer.String())
	}

	s.printf("\n%s\n", verdictLine(summary))
}

func categoryRows(summary m.Summary) [][]string {
	return [][]string{
		{m.CategoryProperty.String(), fmt.Sprintf("%.2f%%", summary.Property)},
		{m.CategoryParameter.String(), fmt.Sprintf("%.2f%%", summary.Param)},
		{m.CategoryReturnType.String(), fmt.Sprintf("%.2f%%", summary.ReturnType)},
	}
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
