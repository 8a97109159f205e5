package domain

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/mouse-blink/typecov/internal/adapter"
	"github.com/mouse-blink/typecov/internal/controller"
	m "github.com/mouse-blink/typecov/internal/model"
)

// ListArgs selects the source files of a run.
type ListArgs struct {
	Paths     []m.Path
	Discovery adapter.DiscoveryOptions
}

// CheckArgs configures a coverage check.
type CheckArgs struct {
	ListArgs
	Threads      int
	Minimum      float64
	HideComplete bool
	// Reporter receives every file result in discovery order. Nil discards.
	Reporter adapter.Reporter
}

// ViewArgs selects a stored report to display.
type ViewArgs struct {
	Report       m.Path
	HideComplete bool
}

// Workflow defines the type coverage operations exposed by the CLI.
type Workflow interface {
	List(args ListArgs) error
	Check(ctx context.Context, args CheckArgs) (m.Summary, error)
	View(args ViewArgs) error
}

type workflow struct {
	fsAdapter adapter.SourceFSAdapter
	ui        controller.UI
	orch      Orchestrator
	logger    hclog.Logger
}

// NewWorkflow creates a new Workflow instance with the provided adapters.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	ui controller.UI,
	orch Orchestrator,
	logger hclog.Logger,
) Workflow {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &workflow{
		fsAdapter: fsAdapter,
		ui:        ui,
		orch:      orch,
		logger:    logger,
	}
}

// List discovers and displays the source files.
func (w *workflow) List(args ListArgs) error {
	sources, err := w.discover(args)
	if err != nil {
		return err
	}

	if err := w.ui.Start(controller.WithListMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.ui.Close()

	return w.ui.DisplaySources(sources)
}

// Check analyzes every source file and returns the aggregate verdict. Results
// reach the UI, the reporter and the aggregator strictly in discovery order,
// whatever the number of workers. The report is written after the verdict is
// displayed, so a write failure still leaves the verdict on screen.
func (w *workflow) Check(ctx context.Context, args CheckArgs) (m.Summary, error) {
	sources, err := w.discover(args.ListArgs)
	if err != nil {
		return m.Summary{}, err
	}

	threads := max(1, args.Threads)

	reporter := args.Reporter
	if reporter == nil {
		reporter = adapter.NewNullReporter()
	}

	options := []controller.StartOption{controller.WithCheckMode()}
	if args.HideComplete {
		options = append(options, controller.WithHideComplete())
	}

	if err := w.ui.Start(options...); err != nil {
		return m.Summary{}, fmt.Errorf("start ui: %w", err)
	}
	defer w.ui.Close()

	w.ui.DisplayStartInfo(len(sources), threads)
	w.logger.Debug("starting check", "files", len(sources), "threads", threads, "minimum", args.Minimum)

	aggregator := NewAggregator(args.Minimum)
	emitter := newOrderedEmitter(len(sources), func(result m.FileCoverage) {
		w.ui.DisplayFileResult(result)
		reporter.Append(result)
		aggregator.Add(result)
	})

	if err := w.analyzeSources(ctx, sources, threads, emitter); err != nil {
		return m.Summary{}, err
	}

	summary, err := aggregator.Finalize()
	if err != nil {
		return m.Summary{}, err
	}

	w.ui.DisplaySummary(summary)
	w.ui.Wait()

	w.logger.Debug("check finished", "overall", summary.Overall, "passed", summary.Passed)

	if err := reporter.Output(); err != nil {
		return summary, fmt.Errorf("write report: %w", err)
	}

	return summary, nil
}

// View replays a report written by a previous check.
func (w *workflow) View(args ViewArgs) error {
	doc, err := adapter.LoadReport(args.Report)
	if err != nil {
		return err
	}

	if len(doc.Result) == 0 {
		return fmt.Errorf("view %s: %w", args.Report, ErrEmptyInput)
	}

	results := make([]m.FileCoverage, 0, len(doc.Result))

	for _, entry := range doc.Result {
		result, err := entry.FileCoverage()
		if err != nil {
			return err
		}

		results = append(results, result)
	}

	options := []controller.StartOption{controller.WithViewMode()}
	if args.HideComplete {
		options = append(options, controller.WithHideComplete())
	}

	if err := w.ui.Start(options...); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.ui.Close()

	for _, result := range results {
		w.ui.DisplayFileResult(result)
	}

	w.ui.DisplaySummary(m.Summary{
		Results: results,
		Overall: doc.Total,
		Minimum: doc.Settings.CoverageMin,
		Passed:  doc.Total >= doc.Settings.CoverageMin,
	})
	w.ui.Wait()

	return nil
}

func (w *workflow) discover(args ListArgs) ([]m.SourceFile, error) {
	sources, err := w.fsAdapter.Get(args.Paths, args.Discovery)
	if err != nil {
		return nil, fmt.Errorf("discover sources: %w", err)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoSources, args.Paths)
	}

	return sources, nil
}

// analyzeSources runs the orchestrator over sources with a bounded worker
// pool. The first failure cancels the remaining work.
func (w *workflow) analyzeSources(ctx context.Context, sources []m.SourceFile, threads int, emitter *orderedEmitter) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(threads, len(sources)))

	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := w.orch.Process(gctx, source)
			if err != nil {
				return err
			}

			emitter.deliver(i, result)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("check: %w", err)
	}

	return nil
}

// orderedEmitter releases results in index order as soon as every earlier
// index has been delivered.
type orderedEmitter struct {
	mu    sync.Mutex
	slots []m.FileCoverage
	ready []bool
	next  int
	emit  func(m.FileCoverage)
}

func newOrderedEmitter(n int, emit func(m.FileCoverage)) *orderedEmitter {
	return &orderedEmitter{
		slots: make([]m.FileCoverage, n),
		ready: make([]bool, n),
		emit:  emit,
	}
}

func (e *orderedEmitter) deliver(i int, result m.FileCoverage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.slots[i] = result
	e.ready[i] = true

	for e.next < len(e.slots) && e.ready[e.next] {
		e.emit(e.slots[e.next])
		e.slots[e.next] = m.FileCoverage{}
		e.next++
	}
}
