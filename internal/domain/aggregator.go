package domain

import (
	"fmt"
	"math"
	"sort"

	m "github.com/mouse-blink/typecov/internal/model"
)

const fullCoverage = 100

// Aggregate builds the coverage record of one file. Category percentages come
// from every classified error, suppressed ones included, so that suppressing a
// line never changes the measured coverage. Active errors are applied last and
// win if the analyzer reported differing figures for one category. Category
// figures must stay independent of suppression; do not narrow them to active
// errors.
func Aggregate(source m.SourceFile, active, suppressed []m.ClassifiedError) m.FileCoverage {
	coverage := map[m.Category]int{
		m.CategoryProperty:   fullCoverage,
		m.CategoryParameter:  fullCoverage,
		m.CategoryReturnType: fullCoverage,
	}

	for _, e := range suppressed {
		coverage[e.Category] = e.Coverage
	}

	for _, e := range active {
		coverage[e.Category] = e.Coverage
	}

	property := coverage[m.CategoryProperty]
	param := coverage[m.CategoryParameter]
	returnType := coverage[m.CategoryReturnType]

	return m.FileCoverage{
		Source:             source,
		Errors:             sortedByLine(active),
		SuppressedErrors:   sortedByLine(suppressed),
		PropertyCoverage:   property,
		ParamCoverage:      param,
		ReturnTypeCoverage: returnType,
		TotalCoverage:      roundPercentage(float64(property+param+returnType) / 3),
	}
}

// roundPercentage rounds half up. The mean of three integers never ends in
// exactly .5, but the rule is fixed for any other caller.
func roundPercentage(v float64) int {
	return int(math.Floor(v + 0.5))
}

func sortedByLine(errs []m.ClassifiedError) []m.ClassifiedError {
	out := make([]m.ClassifiedError, len(errs))
	copy(out, errs)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Line < out[j].Line
	})

	return out
}

// Aggregator accumulates per-file results of a run in the order they are added.
type Aggregator struct {
	minimum float64
	results []m.FileCoverage
}

// NewAggregator creates an Aggregator for the given minimum threshold.
func NewAggregator(minimum float64) *Aggregator {
	return &Aggregator{minimum: minimum}
}

// Add records one file result.
func (a *Aggregator) Add(result m.FileCoverage) {
	a.results = append(a.results, result)
}

// Len returns the number of recorded results.
func (a *Aggregator) Len() int {
	return len(a.results)
}

// Finalize computes the overall verdict over every recorded result.
func (a *Aggregator) Finalize() (m.Summary, error) {
	return Finalize(a.results, a.minimum)
}

// Finalize computes the unweighted mean of every file's total coverage and
// compares it with minimum.
func Finalize(results []m.FileCoverage, minimum float64) (m.Summary, error) {
	if len(results) == 0 {
		return m.Summary{}, fmt.Errorf("finalize coverage: %w", ErrEmptyInput)
	}

	var total, property, param, returnType int

	for _, r := range results {
		total += r.TotalCoverage
		property += r.PropertyCoverage
		param += r.ParamCoverage
		returnType += r.ReturnTypeCoverage
	}

	n := float64(len(results))
	overall := float64(total) / n

	return m.Summary{
		Results:     results,
		Overall:     overall,
		Minimum:     minimum,
		Passed:      overall >= minimum,
		Categorized: true,
		Property:    float64(property) / n,
		Param:       float64(param) / n,
		ReturnType:  float64(returnType) / n,
	}, nil
}
