package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"scr/internal/cli"
	"scr/internal/config"
	"scr/internal/execution"
	"scr/internal/storage"
	"scr/internal/ui"
)

// ExitError carries a process exit status out of a command
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Commands holds all CLI commands
type Commands struct {
	Report  *ReportCommand
	Run     *RunCommand
	View    *ViewCommand
	Summary *SummaryCommand

	log *zap.Logger
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	c := &Commands{log: zap.NewNop()}

	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(os.Stdout)
	viewer := ui.NewReportViewer()
	runner := execution.NewRunner(os.Stderr, "")

	c.Report = NewReportCommand(cfg, c.logger)
	c.Run = NewRunCommand(cfg, runner, c.logger)
	c.View = NewViewCommand(cfg, jsonStorage, viewer)
	c.Summary = NewSummaryCommand(cfg, jsonStorage, formatter)
	return c
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "Reporter options file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", config.DefaultEnvFile, "File with SAUCE_USERNAME / SAUCE_ACCESS_KEY, loaded when present")
	rootCmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")

	// Update config with flags after parsing
	setup := func(cmd *cobra.Command, args []string) error {
		if err := cfg.Apply(flags.ToConfigFlags()); err != nil {
			return err
		}
		if err := config.LoadDotEnv(flags.EnvFile); err != nil {
			return err
		}
		if err := cfg.FromEnv(os.Getenv); err != nil {
			return err
		}
		log, err := newLogger(flags.Debug)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		c.log = log
		return nil
	}

	reportFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&flags.Name, "name", "n", "", "Name of the reported job")
		cmd.Flags().StringVar(&flags.BrowserName, "browser", "", "Browser name sent with the report (default \"chrome\")")
		cmd.Flags().StringVarP(&flags.Build, "build", "b", "", "Build identifier")
		cmd.Flags().StringSliceVarP(&flags.Tags, "tag", "t", nil, "Tag to attach to the job (repeatable)")
		cmd.Flags().StringVarP(&flags.Region, "region", "r", "", "Sauce Labs region: us-west-1, eu-central-1 or staging")
		cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Local report path (default \"sauce-test-report.json\")")
		cmd.Flags().BoolVar(&flags.NoUpload, "no-upload", false, "Only write the local report")
		cmd.Flags().StringVar(&flags.HistoryDSN, "history-dsn", "", "MySQL DSN of the run history archive")
	}

	// Report command
	reportCmd := &cobra.Command{
		Use:     "report [messages.ndjson|-]",
		Short:   "Report a Cucumber messages file to Sauce Labs",
		Long:    "Read Cucumber Messages (NDJSON) from a file or stdin, write the Sauce JSON report and upload it",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.Report.Execute,
		PreRunE: setup,
	}
	reportFlags(reportCmd)
	reportCmd.Flags().BoolVarP(&flags.Progress, "progress", "p", false, "Show a progress bar while reading the messages file")
	rootCmd.AddCommand(reportCmd)

	// Run command
	runCmd := &cobra.Command{
		Use:   "run -- <runner> [args...]",
		Short: "Run cucumber and report its results",
		Long:  "Spawn the runner with the message formatter enabled, report its results and exit with the runner's status",
		Args:  cobra.MinimumNArgs(1),
		Example: `  scr run -- npx cucumber-js features/
  scr run --build nightly -- ./node_modules/.bin/cucumber-js`,
		RunE:    c.Run.Execute,
		PreRunE: setup,
	}
	reportFlags(runCmd)
	rootCmd.AddCommand(runCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:     "view [report.json]",
		Short:   "Browse a Sauce JSON report interactively",
		Long:    "Display the steps of a saved report in an interactive viewer",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.View.Execute,
		PreRunE: setup,
	}
	viewCmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Report path (default \"sauce-test-report.json\")")
	rootCmd.AddCommand(viewCmd)

	// Summary command
	summaryCmd := &cobra.Command{
		Use:     "summary [report.json]",
		Short:   "Print the statistics of a Sauce JSON report",
		Long:    "Print step statistics and the tree of failing scenarios of a saved report",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.Summary.Execute,
		PreRunE: setup,
	}
	summaryCmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Report path (default \"sauce-test-report.json\")")
	summaryCmd.Flags().BoolVarP(&flags.All, "all", "a", false, "Print every step, not only failures")
	rootCmd.AddCommand(summaryCmd)
	c.Summary.all = &flags.All
}

// logger is handed to commands so they see the logger built after flag parsing
func (c *Commands) logger() *zap.Logger {
	return c.log
}

// Close flushes buffered log entries
func (c *Commands) Close() {
	_ = c.log.Sync()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}
