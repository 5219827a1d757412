package commands

import (
	"github.com/spf13/cobra"

	"scr/internal/config"
	"scr/internal/storage"
	"scr/internal/ui"
)

// SummaryCommand handles the summary command
type SummaryCommand struct {
	config    *config.Config
	storage   storage.Storage
	formatter *ui.Formatter
	all       *bool
}

// NewSummaryCommand creates a new SummaryCommand
func NewSummaryCommand(cfg *config.Config, st storage.Storage, formatter *ui.Formatter) *SummaryCommand {
	return &SummaryCommand{
		config:    cfg,
		storage:   st,
		formatter: formatter,
	}
}

// Execute runs the command
func (sc *SummaryCommand) Execute(cmd *cobra.Command, args []string) error {
	run, err := loadReport(sc.storage, args)
	if err != nil {
		return err
	}

	if sc.all != nil && *sc.all {
		sc.formatter.PrintTree(run, false)
		return nil
	}
	sc.formatter.PrintRunSummary(run)
	return nil
}
