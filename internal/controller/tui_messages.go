package controller

import m "github.com/mouse-blink/typecov/internal/model"

// Message types.
type startInfoMsg struct {
	files   int
	threads int
}

type fileResultMsg struct {
	result m.FileCoverage
}

type summaryMsg struct {
	summary m.Summary
}
