package domain

import "errors"

var (
	// ErrUnrecognizedDiagnostic is returned when a diagnostic mentions none of
	// the known coverage categories.
	ErrUnrecognizedDiagnostic = errors.New("unrecognized diagnostic")
	// ErrMalformedDiagnostic is returned when the coverage percentage cannot be
	// read from a diagnostic message.
	ErrMalformedDiagnostic = errors.New("malformed diagnostic")
	// ErrEmptyInput is returned when finalizing a run without any file results.
	ErrEmptyInput = errors.New("no file results to aggregate")
	// ErrNoSources is returned when discovery finds no file to analyze.
	ErrNoSources = errors.New("no source files found")
)
