package domain

import (
	"errors"
	"strings"
	"testing"

	m "github.com/mouse-blink/typecov/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		category m.Category
		code     string
	}{
		{
			name:     "property",
			message:  "Out of 3 possible property types, only 2 - 66.6 % actually have it. Add more property types to get over 100 %",
			category: m.CategoryProperty,
			code:     "pr",
		},
		{
			name:     "param",
			message:  "Out of 6 possible param types, only 3 - 50.0 % actually have it. Add more param types to get over 100 %",
			category: m.CategoryParameter,
			code:     "pa",
		},
		{
			name:     "return",
			message:  "Out of 4 possible return types, only 1 - 25.0 % actually have it. Add more return types to get over 100 %",
			category: m.CategoryReturnType,
			code:     "rt",
		},
		{
			name:     "property wins over param",
			message:  "property types and param types",
			category: m.CategoryProperty,
			code:     "pr",
		},
		{
			name:     "param wins over return",
			message:  "return types and param types",
			category: m.CategoryParameter,
			code:     "pa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := m.Diagnostic{File: "src/User.php", Line: 12, Message: tt.message}

			got, err := Classify(d)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}

			if got.Category != tt.category {
				t.Errorf("Classify() category = %v, want %v", got.Category, tt.category)
			}

			if got.ShortCode() != tt.code {
				t.Errorf("ShortCode() = %q, want %q", got.ShortCode(), tt.code)
			}

			if got.File != d.File || got.Line != d.Line {
				t.Errorf("Classify() location = %s:%d, want %s:%d", got.File, got.Line, d.File, d.Line)
			}
		})
	}
}

func TestClassify_Unrecognized(t *testing.T) {
	d := m.Diagnostic{File: "src/User.php", Line: 7, Message: "Call to an undefined method Foo::bar()."}

	_, err := Classify(d)
	if !errors.Is(err, ErrUnrecognizedDiagnostic) {
		t.Fatalf("Classify() error = %v, want ErrUnrecognizedDiagnostic", err)
	}

	if !strings.Contains(err.Error(), "Call to an undefined method") {
		t.Errorf("error %q does not quote the offending message", err)
	}
}
