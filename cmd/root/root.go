// Package root contains the root command for the application.
package root

import (
	"ledgerunify/internal/config"
	"ledgerunify/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags holds the flags shared by multiple commands.
type CommonFlags struct {
	Ledger   string
	Mappings string
}

var (
	// Cfg is the loaded application configuration, available to subcommands
	// after PersistentPreRun.
	Cfg *config.Config

	// Log is the shared logger instance for commands.
	Log logging.Logger = logging.Default()

	// SharedFlags are the common flags accessible to all commands.
	SharedFlags = CommonFlags{}

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "ledger-unify",
		Short: "Unify and categorize personal financial statements into one ledger.",
		Long: `ledger-unify folds heterogeneous statement exports (payment apps, bank
statements) into a single deduplicated ledger and assigns each transaction a
category through rules with an optional AI fallback.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to ledger-unify!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			Cfg = cfg

			Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLogging(cfg))
			logging.SetDefault(Log)
			return nil
		},
	}
)

// Init registers the persistent flags on the root command.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Ledger, "ledger", "l", "ledger.csv", "Unified ledger CSV file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Mappings, "mappings", "m", "mappings.yaml", "Field mappings YAML file")
}
