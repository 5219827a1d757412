package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scr/internal/config"
	"scr/internal/domain"
	"scr/internal/messages"
	"scr/internal/storage"
	"scr/internal/ui"
)

// ReportCommand handles the report command
type ReportCommand struct {
	config *config.Config
	logger func() *zap.Logger
	stdin  io.Reader
	stdout io.Writer
}

// NewReportCommand creates a new ReportCommand
func NewReportCommand(cfg *config.Config, logger func() *zap.Logger) *ReportCommand {
	return &ReportCommand{
		config: cfg,
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

// Execute runs the command
func (rc *ReportCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := rc.logger()

	var in io.Reader = rc.stdin
	var progress *ui.ProgressBar
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open messages file: %w", err)
		}
		defer f.Close()
		in = f

		log.Debug("reading messages", zap.String("path", args[0]))
		if showProgress(cmd) {
			size := int64(-1)
			if info, err := f.Stat(); err == nil {
				size = info.Size()
			}
			progress = ui.NewProgressBar(size, os.Stderr)
			in = progress.Reader(f)
		}
	}

	p := newPipeline(ctx, rc.config, rc.stdout, log, storage.NewJSONStorage(rc.config))
	defer p.close()

	if progress != nil {
		p.stream.Subscribe(func(env *messages.Envelope) {
			if env.TestCaseFinished == nil {
				return
			}
			st := p.reporter.Run().Stats()
			progress.Update(st.Passed, st.Failed)
		})
	}

	err := p.consume(ctx, in)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return err
	}

	result := p.reporter.Result()
	if result.SaveErr != nil {
		return result.SaveErr
	}
	printWritten(rc.stdout, rc.config, result.Run)
	return nil
}

func showProgress(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("progress")
	return err == nil && v
}

func printWritten(out io.Writer, cfg *config.Config, run *domain.Run) {
	st := run.Stats()
	c := color.New(color.FgGreen)
	if run.Status == domain.StatusFailed {
		c = color.New(color.FgRed)
	}
	c.Fprintf(out, "Report written to %s (%d steps, %d failed)\n", cfg.OutputFile, st.Total, st.Failed)
}
