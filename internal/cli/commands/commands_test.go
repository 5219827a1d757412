package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"scr/internal/cli"
	"scr/internal/config"
	"scr/internal/domain"
	"scr/internal/execution"
	"scr/internal/storage"
	"scr/internal/ui"
)

const fixture = "../../messages/testdata/run.ndjson"

func init() {
	color.NoColor = true
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Name = "cart"
	cfg.OutputFile = filepath.Join(t.TempDir(), "report.json")
	return cfg
}

func testCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func loggerFor(t *testing.T) func() *zap.Logger {
	log := zaptest.NewLogger(t)
	return func() *zap.Logger { return log }
}

func TestReportCommand_File(t *testing.T) {
	cfg := testConfig(t)
	out := &bytes.Buffer{}
	rc := NewReportCommand(cfg, loggerFor(t))
	rc.stdout = out

	require.NoError(t, rc.Execute(testCmd(), []string{fixture}))

	run, err := storage.LoadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, run.Status)
	assert.Len(t, run.Suites, 2)

	text := out.String()
	assert.Contains(t, text, "SAUCE_USERNAME")
	assert.Contains(t, text, "Report written to "+cfg.OutputFile+" (7 steps, 1 failed)")
}

func TestReportCommand_Stdin(t *testing.T) {
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Upload = false
	rc := NewReportCommand(cfg, loggerFor(t))
	rc.stdout = io.Discard
	rc.stdin = bytes.NewReader(data)

	require.NoError(t, rc.Execute(testCmd(), []string{"-"}))
	_, err = os.Stat(cfg.OutputFile)
	assert.NoError(t, err)
}

func TestReportCommand_Unfinished(t *testing.T) {
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	cfg := testConfig(t)
	rc := NewReportCommand(cfg, loggerFor(t))
	rc.stdout = io.Discard
	rc.stdin = strings.NewReader(strings.Join(lines[:len(lines)-1], "\n"))

	err = rc.Execute(testCmd(), nil)
	assert.ErrorContains(t, err, "before the test run finished")
	_, statErr := os.Stat(cfg.OutputFile)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestReportCommand_MissingFile(t *testing.T) {
	rc := NewReportCommand(testConfig(t), loggerFor(t))
	err := rc.Execute(testCmd(), []string{filepath.Join(t.TempDir(), "nope.ndjson")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCommand_ExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("requires sh")
	}
	abs, err := filepath.Abs(fixture)
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Upload = false
	rc := NewRunCommand(cfg, execution.NewRunner(io.Discard, ""), loggerFor(t))
	out := &bytes.Buffer{}
	rc.stdout = out

	err = rc.Execute(testCmd(), []string{"sh", "-c", "cat '" + abs + "'; exit 2"})

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 2, exitErr.Code)

	run, err := storage.LoadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, run.Status)
	assert.Contains(t, out.String(), "Report written to")
}

func TestRunCommand_StartFailure(t *testing.T) {
	rc := NewRunCommand(testConfig(t), execution.NewRunner(io.Discard, ""), loggerFor(t))
	rc.stdout = io.Discard
	err := rc.Execute(testCmd(), []string{"definitely-not-a-runner-binary"})
	require.Error(t, err)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

type fakeViewer struct {
	viewed *domain.Run
}

func (v *fakeViewer) View(run *domain.Run) error {
	v.viewed = run
	return nil
}

func saveSample(t *testing.T, cfg *config.Config) {
	t.Helper()
	run := domain.NewRun()
	file := domain.NewSuite("features/cart.feature")
	scenario := domain.NewSuite("add an item")
	scenario.AddTest(&domain.Test{Name: "Then it fails", Status: domain.StatusFailed, Duration: 2})
	file.AddSuite(scenario)
	run.AddSuite(file)
	run.ComputeStatus()
	require.NoError(t, storage.NewJSONStorage(cfg).Save(run))
}

func TestViewCommand(t *testing.T) {
	cfg := testConfig(t)
	saveSample(t, cfg)
	viewer := &fakeViewer{}

	vc := NewViewCommand(cfg, storage.NewJSONStorage(cfg), viewer)
	require.NoError(t, vc.Execute(testCmd(), nil))
	require.NotNil(t, viewer.viewed)
	assert.Equal(t, domain.StatusFailed, viewer.viewed.Status)

	viewer.viewed = nil
	require.NoError(t, vc.Execute(testCmd(), []string{cfg.OutputFile}))
	assert.NotNil(t, viewer.viewed)

	assert.Error(t, vc.Execute(testCmd(), []string{filepath.Join(t.TempDir(), "missing.json")}))
}

func TestSummaryCommand(t *testing.T) {
	cfg := testConfig(t)
	saveSample(t, cfg)
	out := &bytes.Buffer{}

	sc := NewSummaryCommand(cfg, storage.NewJSONStorage(cfg), ui.NewFormatter(out))
	require.NoError(t, sc.Execute(testCmd(), nil))
	assert.Contains(t, out.String(), "✗ 1 step(s) failed")

	out.Reset()
	all := true
	sc.all = &all
	require.NoError(t, sc.Execute(testCmd(), nil))
	assert.NotContains(t, out.String(), "Statistics")
	assert.Contains(t, out.String(), "✗ Then it fails (2ms)")
}

func TestCommands_Register(t *testing.T) {
	cfg := config.New()
	var flags cli.Flags
	root := &cobra.Command{Use: "scr"}

	NewCommands(cfg).Register(root, &flags, cfg)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"report", "run", "view", "summary"}, names)

	report, _, err := root.Find([]string{"report"})
	require.NoError(t, err)
	assert.NotNil(t, report.Flags().Lookup("progress"))
	assert.NotNil(t, report.Flags().Lookup("history-dsn"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestCommands_SetupAppliesFlags(t *testing.T) {
	t.Setenv(config.EnvUsername, "")
	t.Setenv(config.EnvAccessKey, "")

	cfg := config.New()
	var flags cli.Flags
	root := &cobra.Command{Use: "scr", SilenceUsage: true, SilenceErrors: true}
	cmds := NewCommands(cfg)
	cmds.Register(root, &flags, cfg)

	output := filepath.Join(t.TempDir(), "out.json")
	root.SetArgs([]string{"summary", "--output", output, "--env-file", filepath.Join(t.TempDir(), "none.env")})
	err := root.Execute()

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, output, cfg.OutputFile)
}

func TestCommands_InvalidRegion(t *testing.T) {
	cfg := config.New()
	var flags cli.Flags
	root := &cobra.Command{Use: "scr", SilenceUsage: true, SilenceErrors: true}
	NewCommands(cfg).Register(root, &flags, cfg)

	root.SetArgs([]string{"report", "--region", "mars-1", fixture})
	assert.ErrorIs(t, root.Execute(), config.ErrInvalidRegion)
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		log, err := newLogger(debug)
		require.NoError(t, err)
		assert.Equal(t, debug, log.Core().Enabled(zap.DebugLevel))
	}
}

func TestExitError(t *testing.T) {
	assert.Equal(t, "exit status 4", (&ExitError{Code: 4}).Error())
}
