package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scr/internal/config"
	"scr/internal/execution"
	"scr/internal/storage"
)

// RunCommand handles the run command
type RunCommand struct {
	config *config.Config
	runner *execution.Runner
	logger func() *zap.Logger
	stdout io.Writer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, runner *execution.Runner, logger func() *zap.Logger) *RunCommand {
	return &RunCommand{
		config: cfg,
		runner: runner,
		logger: logger,
		stdout: os.Stdout,
	}
}

// Execute runs the command. The runner's exit status is returned as an *ExitError.
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := rc.logger()

	p := newPipeline(ctx, rc.config, rc.stdout, log, storage.NewJSONStorage(rc.config))
	defer p.close()

	out, err := rc.runner.Start(ctx, args)
	if err != nil {
		return err
	}

	consumeErr := p.consume(ctx, out)
	if consumeErr != nil {
		// keep draining so the runner is not blocked on a full pipe
		_, _ = io.Copy(io.Discard, out)
	}
	waitErr := rc.runner.Wait()

	if consumeErr != nil {
		log.Warn("runner output was not fully reported", zap.Error(consumeErr))
		color.New(color.FgYellow).Fprintf(rc.stdout, "Reporting incomplete: %v\n", consumeErr)
	} else if result := p.reporter.Result(); result.SaveErr == nil {
		printWritten(rc.stdout, rc.config, result.Run)
	}

	if waitErr == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return fmt.Errorf("runner: %w", waitErr)
	}
	return &ExitError{Code: execution.ExitCode(waitErr)}
}
