package commands

import (
	"github.com/spf13/cobra"

	"scr/internal/config"
	"scr/internal/domain"
	"scr/internal/storage"
	"scr/internal/ui"
)

// ViewCommand handles the view command
type ViewCommand struct {
	config  *config.Config
	storage storage.Storage
	viewer  ui.Viewer
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(cfg *config.Config, st storage.Storage, viewer ui.Viewer) *ViewCommand {
	return &ViewCommand{
		config:  cfg,
		storage: st,
		viewer:  viewer,
	}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	run, err := loadReport(vc.storage, args)
	if err != nil {
		return err
	}
	return vc.viewer.View(run)
}

// loadReport reads the report named in args, or the configured output file
func loadReport(st storage.Storage, args []string) (*domain.Run, error) {
	if len(args) == 1 {
		return storage.LoadFile(args[0])
	}
	return st.Load()
}
