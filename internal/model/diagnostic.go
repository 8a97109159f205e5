// Package model defines the data structures for type coverage analysis.
package model

import (
	"fmt"
	"strconv"
)

// Category represents the kind of type declaration being measured.
type Category string

const (
	// CategoryProperty represents class property type declarations.
	CategoryProperty Category = "property"
	// CategoryParameter represents function and method parameter types.
	CategoryParameter Category = "param"
	// CategoryReturnType represents function and method return types.
	CategoryReturnType Category = "return"
)

// Categories lists every category in classification priority order.
var Categories = []Category{CategoryProperty, CategoryParameter, CategoryReturnType}

// ShortCode returns the two-letter tag used in compact reports.
func (c Category) ShortCode() string {
	switch c {
	case CategoryProperty:
		return "pr"
	case CategoryParameter:
		return "pa"
	case CategoryReturnType:
		return "rt"
	default:
		return ""
	}
}

func (c Category) String() string {
	return string(c)
}

// UnknownPolicy decides what happens to a diagnostic that names no coverage
// category.
type UnknownPolicy string

// Available UnknownPolicy values.
const (
	UnknownAbort UnknownPolicy = "abort"
	UnknownSkip  UnknownPolicy = "skip"
)

// Diagnostic is a raw finding reported by the static-analysis engine.
type Diagnostic struct {
	File    Path
	Line    int
	Message string
}

// ClassifiedError is a diagnostic resolved to a coverage category.
type ClassifiedError struct {
	File     Path
	Line     int
	Category Category
	// Coverage is the file-level percentage the analyzer reported for Category.
	Coverage int
}

// ShortCode returns the category tag of the error.
func (e ClassifiedError) ShortCode() string {
	return e.Category.ShortCode()
}

// Code returns the short code followed by the line number (e.g. pr12).
func (e ClassifiedError) Code() string {
	return e.ShortCode() + strconv.Itoa(e.Line)
}

// ParseCode splits a code produced by ClassifiedError.Code back into its
// category and line.
func ParseCode(code string) (Category, int, error) {
	if len(code) < 3 {
		return "", 0, fmt.Errorf("invalid code %q", code)
	}

	var category Category

	for _, c := range Categories {
		if c.ShortCode() == code[:2] {
			category = c
			break
		}
	}

	if category == "" {
		return "", 0, fmt.Errorf("invalid code %q: unknown category", code)
	}

	line, err := strconv.Atoi(code[2:])
	if err != nil || line <= 0 {
		return "", 0, fmt.Errorf("invalid code %q: bad line number", code)
	}

	return category, line, nil
}
