// Package cli implements the prism-admin command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prismstudio/certverify/internal/config"
	"github.com/prismstudio/certverify/internal/infrastructure/monitoring"
	"github.com/prismstudio/certverify/pkg/logger"
)

// NewRootCommand builds the prism-admin command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "prism-admin",
		Short: "Administer the PrismStudio certificate verification service.",
		Long: `prism-admin inspects certificate identifiers and performs maintenance on the
verification store, such as creating tables and clearing rate limit records.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to the config file")

	rootCmd.AddCommand(newIDCommand(), newMigrateCommand(), newRateLimitCommand())
	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads configuration for commands that touch storage.
func loadConfig(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	log := monitoring.NewZapLoggerWithSink(&config.LogConfig{Level: "warn", Format: "console"}, zapStderr(cmd))

	cfg, err := config.NewLoader(path, log).Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

//Personal.AI order the ending
