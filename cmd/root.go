// Package cmd provides the root command and CLI setup for typecov.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/typecov/internal/adapter"
	"github.com/mouse-blink/typecov/internal/config"
	"github.com/mouse-blink/typecov/internal/controller"
	"github.com/mouse-blink/typecov/internal/domain"
	"github.com/mouse-blink/typecov/internal/logger"
	m "github.com/mouse-blink/typecov/internal/model"
)

// ErrCoverageBelowMinimum is returned when the overall coverage is below the
// configured minimum and the gate has not been switched off.
var ErrCoverageBelowMinimum = errors.New("type coverage below minimum")

// workflow is built from the configuration on each run unless a test has
// replaced it.
var workflow domain.Workflow

var (
	gateFlag         bool
	minFlag          float64
	jsonFlag         string
	yamlFlag         string
	sarifFlag        string
	parallelFlag     int
	sarifInputFlag   string
	hideCompleteFlag bool
	excludeFlags     []string
	extFlags         []string
	configFlag       string
	logLevelFlag     string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "typecov [paths...]",
		Short: "PHP type declaration coverage gate",
		Long: `Typecov measures how many properties, parameters and return values of a
PHP code base carry a type declaration, using the diagnostics of a static
analyzer, and fails the build when the coverage drops below a minimum.

Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./src/...      recursively scan src directory
  - ./src ./lib    scan multiple directories

Lines containing the ignore marker (default @typecov-ignore) are reported
as ignored and do not count as uncovered.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			wf, err := resolveWorkflow(cmd, cfg)
			if err != nil {
				return err
			}

			summary, err := wf.Check(cmd.Context(), domain.CheckArgs{
				ListArgs:     listArgs(args, cfg),
				Threads:      cfg.Parallel,
				Minimum:      cfg.Minimum,
				HideComplete: cfg.HideComplete,
				Reporter: adapter.NewReporter(adapter.ReporterOptions{
					JSON:     m.Path(cfg.Report.JSON),
					YAML:     m.Path(cfg.Report.YAML),
					Sarif:    m.Path(cfg.Report.Sarif),
					Settings: m.ReportSettings{CoverageMin: cfg.Minimum},
				}),
			})
			if err != nil {
				return err
			}

			if cfg.Gate && !summary.Passed {
				return fmt.Errorf("%w: %.2f%% < %.2f%%", ErrCoverageBelowMinimum, summary.Overall, summary.Minimum)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&gateFlag, "gate", true, "exit with status 1 when coverage is below --min (--gate=false reports only)")
	cmd.Flags().Float64Var(&minFlag, "min", 0, "minimum overall type coverage percentage")
	cmd.Flags().StringVar(&jsonFlag, "json", "", "write a JSON report to this path")
	cmd.Flags().StringVar(&yamlFlag, "yaml", "", "write a YAML report to this path")
	cmd.Flags().StringVar(&sarifFlag, "sarif", "", "write a SARIF 2.1.0 report to this path")
	cmd.Flags().IntVarP(&parallelFlag, "parallel", "p", 1, "number of files analyzed in parallel")
	cmd.Flags().StringVar(&sarifInputFlag, "sarif-input", "", "read analyzer diagnostics from a SARIF log instead of running the analyzer")

	cmd.PersistentFlags().BoolVar(&hideCompleteFlag, "hide-complete", false, "hide files with 100% type coverage")
	cmd.PersistentFlags().StringArrayVarP(&excludeFlags, "exclude", "x", nil, "exclude files matching regex (can be repeated)")
	cmd.PersistentFlags().StringArrayVar(&extFlags, "ext", []string{".php"}, "source file extension (can be repeated)")
	cmd.PersistentFlags().StringVar(&configFlag, "config", config.DefaultPath, "configuration file")
	cmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: trace, debug, info, warn, error, off")

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		// The verdict has already been displayed.
		if !errors.Is(err, ErrCoverageBelowMinimum) {
			_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		}

		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies the flags that were
// explicitly set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFlag, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}

	applyFlags(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("gate") {
		cfg.Gate = gateFlag
	}

	if changed("min") {
		cfg.Minimum = minFlag
	}

	if changed("json") {
		cfg.Report.JSON = jsonFlag
	}

	if changed("yaml") {
		cfg.Report.YAML = yamlFlag
	}

	if changed("sarif") {
		cfg.Report.Sarif = sarifFlag
	}

	if changed("parallel") {
		cfg.Parallel = parallelFlag
	}

	if changed("sarif-input") {
		cfg.Analyzer.SarifInput = sarifInputFlag
	}

	if changed("hide-complete") {
		cfg.HideComplete = hideCompleteFlag
	}

	if changed("exclude") {
		cfg.Exclude = excludeFlags
	}

	if changed("ext") {
		cfg.Extensions = extFlags
	}
}

func resolveWorkflow(cmd *cobra.Command, cfg *config.Config) (domain.Workflow, error) {
	if workflow != nil {
		return workflow, nil
	}

	return buildWorkflow(cmd, cfg)
}

// buildWorkflow wires the adapters, the orchestrator and the UI for cfg.
func buildWorkflow(cmd *cobra.Command, cfg *config.Config) (domain.Workflow, error) {
	flagLevel := ""
	if cmd.Flags().Changed("log-level") {
		flagLevel = logLevelFlag
	}

	log := logger.NewLogger("typecov", flagLevel, cfg.Logger.Level, cmd.ErrOrStderr())

	fsAdapter := adapter.NewLocalSourceFSAdapter()

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	interpreter := domain.NewInterpreter(
		domain.NewPercentageExtractor(cfg.Analyzer.PercentageAnchor, cfg.Analyzer.PercentageToken),
	)

	orch := domain.NewOrchestrator(
		fsAdapter,
		analyzer,
		interpreter,
		domain.NewSuppressionFilter(cfg.IgnoreMarker),
		domain.WithUnknownPolicy(cfg.UnknownDiagnostics),
		domain.WithLogger(log),
	)

	ui := controller.NewUI(cmd, controller.IsTTY(cmd.OutOrStdout()))

	return domain.NewWorkflow(fsAdapter, ui, orch, log), nil
}

func newAnalyzer(cfg *config.Config) (adapter.Analyzer, error) {
	if cfg.Analyzer.SarifInput != "" {
		analyzer, err := adapter.NewSarifAnalyzer(m.Path(cfg.Analyzer.SarifInput), "")
		if err != nil {
			return nil, err
		}

		return analyzer, nil
	}

	return adapter.NewCommandAnalyzer(cfg.Analyzer.Command, cfg.Analyzer.Args, ""), nil
}

func listArgs(args []string, cfg *config.Config) domain.ListArgs {
	return domain.ListArgs{
		Paths: parsePaths(args),
		Discovery: adapter.DiscoveryOptions{
			Extensions: cfg.Extensions,
			Exclude:    cfg.Exclude,
		},
	}
}

// parsePaths converts arguments to paths, defaulting to the whole working
// directory.
func parsePaths(args []string) []m.Path {
	if len(args) == 0 {
		return []m.Path{"./..."}
	}

	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
