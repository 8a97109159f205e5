package model

// Path represents a file system path.
type Path string

// SourceFile is a file selected for analysis.
type SourceFile struct {
	// FullPath is the absolute path handed to the analyzer.
	FullPath Path
	// ShortPath is the path relative to the project root, used for display and reports.
	ShortPath Path
}
