package main

import (
	"errors"
	"fmt"
	"os"

	"scr/internal/cli"
	"scr/internal/cli/commands"
	"scr/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "scr",
		Short:         "Cucumber to Sauce Labs test reporter",
		Long:          `Turn the Cucumber Messages stream of a test run into a Sauce JSON report, write it locally and upload it, together with the console transcript and step attachments, to Sauce Labs.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()
	cfg.Version = version

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	err := rootCmd.Execute()
	cmds.Close()

	var exitErr *commands.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
