package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/typecov/internal/adapter"
	"github.com/mouse-blink/typecov/internal/config"
	"github.com/mouse-blink/typecov/internal/domain"
	domainmocks "github.com/mouse-blink/typecov/internal/domain/mocks"
	m "github.com/mouse-blink/typecov/internal/model"
)

// newTestRootCmd returns a fresh command tree whose workflow is replaced by
// mockWorkflow for the duration of the test.
func newTestRootCmd(t *testing.T, mockWorkflow domain.Workflow) *cobra.Command {
	t.Helper()

	cmd := newRootCmd()
	cmd.AddCommand(newListCmd(), newViewCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	t.Cleanup(func() { workflow = originalWorkflow })

	// keep the lookup of the default config file away from the repository
	configPath := filepath.Join(t.TempDir(), config.DefaultPath)
	require.NoError(t, cmd.PersistentFlags().Set("config", configPath))
	cmd.PersistentFlags().Lookup("config").Changed = false

	return cmd
}

func TestRootCmd_Defaults(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd := newTestRootCmd(t, mockWorkflow)

	mockWorkflow.On("Check", mock.Anything, mock.MatchedBy(func(args domain.CheckArgs) bool {
		_, isNull := args.Reporter.(*adapter.NullReporter)

		return assert.ObjectsAreEqual([]m.Path{"./..."}, args.Paths) &&
			assert.ObjectsAreEqual([]string{".php"}, args.Discovery.Extensions) &&
			len(args.Discovery.Exclude) == 0 &&
			args.Threads == 1 &&
			args.Minimum == 0 &&
			!args.HideComplete &&
			isNull
	})).Return(m.Summary{Overall: 100, Passed: true}, nil)

	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
}

func TestRootCmd_FlagsArePassedThrough(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd := newTestRootCmd(t, mockWorkflow)
	reportPath := filepath.Join(t.TempDir(), "typecov.json")

	mockWorkflow.On("Check", mock.Anything, mock.MatchedBy(func(args domain.CheckArgs) bool {
		_, isJSON := args.Reporter.(*adapter.JSONReporter)

		return assert.ObjectsAreEqual([]m.Path{"src/...", "index.php"}, args.Paths) &&
			assert.ObjectsAreEqual([]string{".php", ".phtml"}, args.Discovery.Extensions) &&
			assert.ObjectsAreEqual([]string{"^tests/"}, args.Discovery.Exclude) &&
			args.Threads == 4 &&
			args.Minimum == 80 &&
			args.HideComplete &&
			isJSON
	})).Return(m.Summary{Overall: 90, Minimum: 80, Passed: true}, nil)

	cmd.SetArgs([]string{
		"--min", "80",
		"-p", "4",
		"--hide-complete",
		"-x", "^tests/",
		"--ext", ".php", "--ext", ".phtml",
		"--json", reportPath,
		"src/...", "index.php",
	})
	require.NoError(t, cmd.Execute())
}

func TestRootCmd_PathArguments(t *testing.T) {
	for _, args := range [][]string{
		{"./src"},
		{"src/..."},
		{"./src", "./lib", "index.php"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			mockWorkflow := domainmocks.NewMockWorkflow(t)
			cmd := newTestRootCmd(t, mockWorkflow)

			want := make([]m.Path, 0, len(args))
			for _, arg := range args {
				want = append(want, m.Path(arg))
			}

			mockWorkflow.On("Check", mock.Anything, mock.MatchedBy(func(checkArgs domain.CheckArgs) bool {
				return assert.ObjectsAreEqual(want, checkArgs.Paths)
			})).Return(m.Summary{Overall: 100, Passed: true}, nil)

			cmd.SetArgs(args)
			require.NoError(t, cmd.Execute())
		})
	}
}

func TestRootCmd_SeveralReports(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd := newTestRootCmd(t, mockWorkflow)
	dir := t.TempDir()

	mockWorkflow.On("Check", mock.Anything, mock.MatchedBy(func(args domain.CheckArgs) bool {
		_, isMulti := args.Reporter.(*adapter.MultiReporter)
		return isMulti
	})).Return(m.Summary{Passed: true}, nil)

	cmd.SetArgs([]string{
		"--yaml", filepath.Join(dir, "typecov.yaml"),
		"--sarif", filepath.Join(dir, "typecov.sarif"),
	})
	require.NoError(t, cmd.Execute())
}

func TestRootCmd_Gate(t *testing.T) {
	below := m.Summary{Overall: 70, Minimum: 80, Passed: false}

	t.Run("fails below minimum", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		cmd := newTestRootCmd(t, mockWorkflow)
		mockWorkflow.On("Check", mock.Anything, mock.Anything).Return(below, nil)

		cmd.SetArgs([]string{"--gate", "--min", "80"})
		err := cmd.Execute()

		require.ErrorIs(t, err, ErrCoverageBelowMinimum)
		assert.Contains(t, err.Error(), "70.00% < 80.00%")
	})

	t.Run("below minimum fails by default", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		cmd := newTestRootCmd(t, mockWorkflow)
		mockWorkflow.On("Check", mock.Anything, mock.Anything).
			Return(m.Summary{Overall: 50, Minimum: 90, Passed: false}, nil)

		cmd.SetArgs([]string{"--min", "90"})
		err := cmd.Execute()

		require.ErrorIs(t, err, ErrCoverageBelowMinimum)
		assert.Contains(t, err.Error(), "50.00% < 90.00%")
	})

	t.Run("gate switched off reports only", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		cmd := newTestRootCmd(t, mockWorkflow)
		mockWorkflow.On("Check", mock.Anything, mock.Anything).Return(below, nil)

		cmd.SetArgs([]string{"--gate=false", "--min", "80"})
		assert.NoError(t, cmd.Execute())
	})

	t.Run("gate switched off in config", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		cmd := newTestRootCmd(t, mockWorkflow)
		mockWorkflow.On("Check", mock.Anything, mock.Anything).Return(below, nil)

		configPath := filepath.Join(t.TempDir(), "typecov.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("min: 80\ngate: false\n"), 0o644))

		cmd.SetArgs([]string{"--config", configPath})
		assert.NoError(t, cmd.Execute())
	})

	t.Run("passes at minimum", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		cmd := newTestRootCmd(t, mockWorkflow)
		mockWorkflow.On("Check", mock.Anything, mock.Anything).
			Return(m.Summary{Overall: 80, Minimum: 80, Passed: true}, nil)

		cmd.SetArgs([]string{"--gate", "--min", "80"})
		assert.NoError(t, cmd.Execute())
	})
}

func TestRootCmd_WorkflowError(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd := newTestRootCmd(t, mockWorkflow)

	mockWorkflow.On("Check", mock.Anything, mock.Anything).
		Return(m.Summary{}, domain.ErrNoSources)

	cmd.SetArgs([]string{"--gate"})
	err := cmd.Execute()

	require.ErrorIs(t, err, domain.ErrNoSources)
	assert.NotErrorIs(t, err, ErrCoverageBelowMinimum)
}

func TestRootCmd_InvalidMinimum(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd := newTestRootCmd(t, mockWorkflow)

	cmd.SetArgs([]string{"--min", "120"})
	err := cmd.Execute()

	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRootCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "typecov.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("min: 90\ngate: true\nparallel: 3\nexclude: [^legacy/]\n"), 0o644))

	t.Run("values come from the file", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		cmd := newTestRootCmd(t, mockWorkflow)

		mockWorkflow.On("Check", mock.Anything, mock.MatchedBy(func(args domain.CheckArgs) bool {
			return args.Minimum == 90 &&
				args.Threads == 3 &&
				assert.ObjectsAreEqual([]string{"^legacy/"}, args.Discovery.Exclude)
		})).Return(m.Summary{Overall: 85, Minimum: 90, Passed: false}, nil)

		cmd.SetArgs([]string{"--config", configPath})
		assert.ErrorIs(t, cmd.Execute(), ErrCoverageBelowMinimum)
	})

	t.Run("flags override the file", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		cmd := newTestRootCmd(t, mockWorkflow)

		mockWorkflow.On("Check", mock.Anything, mock.MatchedBy(func(args domain.CheckArgs) bool {
			return args.Minimum == 50 && args.Threads == 3
		})).Return(m.Summary{Overall: 85, Minimum: 50, Passed: true}, nil)

		cmd.SetArgs([]string{"--config", configPath, "--min", "50"})
		assert.NoError(t, cmd.Execute())
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		cmd := newTestRootCmd(t, mockWorkflow)

		cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml")})
		err := cmd.Execute()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	if cmd.Use != "typecov [paths...]" {
		t.Errorf("newRootCmd() Use = %v, want %v", cmd.Use, "typecov [paths...]")
	}
	if cmd.Short == "" {
		t.Error("newRootCmd() Short should not be empty")
	}
	if cmd.Long == "" {
		t.Error("newRootCmd() Long should not be empty")
	}

	for _, name := range []string{"gate", "min", "json", "yaml", "sarif", "parallel", "sarif-input"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("newRootCmd() missing --%s flag", name)
		}
	}

	for _, name := range []string{"hide-complete", "exclude", "ext", "config", "log-level"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("newRootCmd() missing persistent --%s flag", name)
		}
	}
}

func TestInit(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"list", "view"} {
		if !names[want] {
			t.Errorf("init() did not register %q", want)
		}
	}
}

func TestParsePaths(t *testing.T) {
	assert.Equal(t, []m.Path{"./..."}, parsePaths(nil))
	assert.Equal(t, []m.Path{"src", "lib/..."}, parsePaths([]string{"src", "lib/..."}))
}

func TestBuildWorkflow(t *testing.T) {
	t.Run("command analyzer", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		wf, err := buildWorkflow(cmd, config.Default())
		require.NoError(t, err)
		assert.NotNil(t, wf)
	})

	t.Run("missing sarif input", func(t *testing.T) {
		cmd := newRootCmd()
		cfg := config.Default()
		cfg.Analyzer.SarifInput = filepath.Join(t.TempDir(), "missing.sarif")

		_, err := buildWorkflow(cmd, cfg)
		assert.Error(t, err)
	})
}

func TestExecute_ProcessLevel_Success(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS") == "1" {
		originalRootCmd := rootCmd
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Println("success")
				return nil
			},
		}
		mockCmd.SetOut(os.Stdout)
		mockCmd.SetErr(os.Stderr)
		rootCmd = mockCmd
		defer func() { rootCmd = originalRootCmd }()

		Execute()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_Success")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_SUBPROCESS=1")
	output, err := cmd.CombinedOutput()

	if err != nil {
		t.Errorf("Process exited with error: %v, output: %s", err, output)
	}

	if !strings.Contains(string(output), "success") {
		t.Errorf("Expected 'success' in output, got: %s", output)
	}
}

func TestExecute_ProcessLevel_Failure(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS_FAIL") == "1" {
		originalRootCmd := rootCmd
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(cmd *cobra.Command, args []string) error {
				return errors.New("analyzer exploded")
			},
		}
		mockCmd.SetOut(os.Stdout)
		mockCmd.SetErr(os.Stderr)
		rootCmd = mockCmd
		defer func() { rootCmd = originalRootCmd }()

		Execute()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_Failure")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_SUBPROCESS_FAIL=1")
	output, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected exec.ExitError, got %T (%v)", err, err)
	}

	if exitErr.ExitCode() != 1 {
		t.Errorf("Expected exit code 1, got %d", exitErr.ExitCode())
	}

	if !strings.Contains(string(output), "Error: analyzer exploded") {
		t.Errorf("Expected error message in output, got: %s", output)
	}
}

func TestExecute_ProcessLevel_BelowMinimum(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS_GATE") == "1" {
		originalRootCmd := rootCmd
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Println("Type coverage below expected: 70.0%. Minimum: 80.0%")
				return fmt.Errorf("%w: 70.00%% < 80.00%%", ErrCoverageBelowMinimum)
			},
		}
		mockCmd.SilenceErrors = true
		mockCmd.SetOut(os.Stdout)
		mockCmd.SetErr(os.Stderr)
		rootCmd = mockCmd
		defer func() { rootCmd = originalRootCmd }()

		Execute()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_BelowMinimum")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_SUBPROCESS_GATE=1")
	output, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected exec.ExitError, got %T (%v)", err, err)
	}

	if exitErr.ExitCode() != 1 {
		t.Errorf("Expected exit code 1, got %d", exitErr.ExitCode())
	}

	if strings.Contains(string(output), "Error:") {
		t.Errorf("the verdict should be the only failure output, got: %s", output)
	}
}
