package cmd

import (
	"context"
	"log/slog"

	"github.com/gaze-network/ticket-integrity/internal/config"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmds = []*cobra.Command{
	NewVersionCommand(),
	NewRunCommand(),
	NewMigrateCommand(),
	NewGenerateKeyCommand(),
	NewCredentialCommand(),
}

// Execute runs the root command
func Execute(ctx context.Context) {
	var configFile string

	// Initialize root command
	cmd := &cobra.Command{
		Use:          "ticket-integrity",
		Long:         `Ticket integrity and marketplace analytics service: gate verification, offer lifecycle and resale analytics.`,
		SilenceUsage: true,
	}

	// Add global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		// Initialize configuration
		config := config.Parse(configFile)

		// Initialize logger
		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Something went wrong, can't init logger", slogx.Error(err), slog.Any("config", config.Logger))
		}
	})

	// Register sub-commands
	cmd.AddCommand(cmds...)

	// Execute command
	if err := cmd.ExecuteContext(ctx); err != nil {
		// Cobra will print the error message by default
		logger.DebugContext(ctx, "Error executing command", slogx.Error(err))
	}
}
