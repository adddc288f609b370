package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/mymoney/internal/buildinfo"
	"github.com/cleared-dev/mymoney/internal/config"
)

type rootFlags struct {
	dataDir  string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:     "mymoney",
		Short:   "Normalize bank, card and exchange exports into one ledger",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data root (default $"+config.EnvDataDir+" or .)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(
		newInitCommand(&flags),
		newDetectCommand(&flags),
		newIngestCommand(&flags),
		newReportCommand(&flags),
		newSheetsInitCommand(&flags),
	)

	return rootCmd
}
