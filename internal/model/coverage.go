package model

// FileCoverage holds the type coverage of a single source file.
type FileCoverage struct {
	Source           SourceFile
	Errors           []ClassifiedError // sorted by line
	SuppressedErrors []ClassifiedError // sorted by line

	PropertyCoverage   int
	ParamCoverage      int
	ReturnTypeCoverage int
	TotalCoverage      int
}

// UncoveredCodes returns the codes of the active errors.
func (f FileCoverage) UncoveredCodes() []string {
	return codes(f.Errors)
}

// SuppressedCodes returns the codes of the suppressed errors.
func (f FileCoverage) SuppressedCodes() []string {
	return codes(f.SuppressedErrors)
}

// Complete reports whether the file is fully covered.
func (f FileCoverage) Complete() bool {
	return f.TotalCoverage == 100
}

func codes(errs []ClassifiedError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code())
	}

	return out
}

// Summary is the aggregate verdict over every analyzed file.
type Summary struct {
	Results []FileCoverage // file-discovery order
	Overall float64        // unweighted mean of TotalCoverage
	Minimum float64
	Passed  bool

	// Categorized is false when the per-category means are unknown, as for
	// a summary rebuilt from a stored report.
	Categorized bool

	// Per-category means across files, for display.
	Property   float64
	Param      float64
	ReturnType float64
}

// ReportSettings are the run settings persisted with a report.
type ReportSettings struct {
	CoverageMin float64 `json:"coverage-min" yaml:"coverage-min"`
}
