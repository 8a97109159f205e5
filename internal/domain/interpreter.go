package domain

import (
	m "github.com/mouse-blink/typecov/internal/model"
)

// Interpreter turns a raw diagnostic into a classified coverage fact. It is the
// only place that knows the analyzer's message wording.
type Interpreter interface {
	Interpret(d m.Diagnostic) (m.ClassifiedError, error)
}

type interpreter struct {
	extractor PercentageExtractor
}

// NewInterpreter creates an Interpreter using the given extractor.
func NewInterpreter(extractor PercentageExtractor) Interpreter {
	return &interpreter{extractor: extractor}
}

func (i *interpreter) Interpret(d m.Diagnostic) (m.ClassifiedError, error) {
	classified, err := Classify(d)
	if err != nil {
		return m.ClassifiedError{}, err
	}

	coverage, err := i.extractor.Extract(d)
	if err != nil {
		return m.ClassifiedError{}, err
	}

	classified.Coverage = coverage

	return classified, nil
}
