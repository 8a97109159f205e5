package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/mouse-blink/typecov/internal/adapter"
	m "github.com/mouse-blink/typecov/internal/model"
)

// Orchestrator computes the coverage of a single source file: it runs the
// analyzer, interprets the diagnostics, applies inline suppressions and
// aggregates the result.
type Orchestrator interface {
	Process(ctx context.Context, source m.SourceFile) (m.FileCoverage, error)
}

type orchestrator struct {
	fsAdapter   adapter.SourceFSAdapter
	analyzer    adapter.Analyzer
	interpreter Interpreter
	filter      SuppressionFilter
	policy      m.UnknownPolicy
	logger      hclog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*orchestrator)

// WithUnknownPolicy sets the policy for unrecognized diagnostics.
func WithUnknownPolicy(policy m.UnknownPolicy) OrchestratorOption {
	return func(o *orchestrator) {
		o.policy = policy
	}
}

// WithLogger sets the logger used for warnings and per-file debug output.
func WithLogger(logger hclog.Logger) OrchestratorOption {
	return func(o *orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator constructs an Orchestrator backed by the provided
// filesystem adapter and analyzer.
func NewOrchestrator(
	fsAdapter adapter.SourceFSAdapter,
	analyzer adapter.Analyzer,
	interpreter Interpreter,
	filter SuppressionFilter,
	options ...OrchestratorOption,
) Orchestrator {
	o := &orchestrator{
		fsAdapter:   fsAdapter,
		analyzer:    analyzer,
		interpreter: interpreter,
		filter:      filter,
		policy:      m.UnknownAbort,
		logger:      hclog.NewNullLogger(),
	}

	for _, opt := range options {
		opt(o)
	}

	return o
}

func (o *orchestrator) Process(ctx context.Context, source m.SourceFile) (m.FileCoverage, error) {
	diagnostics, err := o.analyzer.Analyze(ctx, source.FullPath)
	if err != nil {
		return m.FileCoverage{}, fmt.Errorf("analyze %s: %w", source.ShortPath, err)
	}

	classified, err := o.interpret(source, diagnostics)
	if err != nil {
		return m.FileCoverage{}, err
	}

	active, suppressed := o.partition(source, classified)
	result := Aggregate(source, active, suppressed)

	o.logger.Debug("file analyzed",
		"file", source.ShortPath,
		"diagnostics", len(diagnostics),
		"suppressed", len(suppressed),
		"coverage", result.TotalCoverage,
	)

	return result, nil
}

func (o *orchestrator) interpret(source m.SourceFile, diagnostics []m.Diagnostic) ([]m.ClassifiedError, error) {
	classified := make([]m.ClassifiedError, 0, len(diagnostics))

	for _, d := range diagnostics {
		e, err := o.interpreter.Interpret(d)
		if err != nil {
			if o.policy == m.UnknownSkip && errors.Is(err, ErrUnrecognizedDiagnostic) {
				o.logger.Warn("skipping unrecognized diagnostic", "file", source.ShortPath, "line", d.Line, "message", d.Message)
				continue
			}

			return nil, fmt.Errorf("interpret %s: %w", source.ShortPath, err)
		}

		classified = append(classified, e)
	}

	return classified, nil
}

// partition reads the source once, and only when there is something to
// suppress. An unreadable file suppresses nothing.
func (o *orchestrator) partition(source m.SourceFile, classified []m.ClassifiedError) ([]m.ClassifiedError, []m.ClassifiedError) {
	if len(classified) == 0 {
		return classified, nil
	}

	content, err := o.fsAdapter.ReadFile(source.FullPath)
	if err != nil {
		o.logger.Warn("cannot read source for suppressions", "file", source.ShortPath, "err", err)
		return classified, nil
	}

	return o.filter.Partition(classified, SplitLines(content))
}
