package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose    bool
	dryRun     bool
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "hydrate",
		Short:         "Hydrate converges a tenant's configuration with declarative JSON templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Preview changes without writing to the tenant")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to the settings file (defaults to ./hydrate.yaml)")

	cmd.AddCommand(newApplyCmd(flags))
	cmd.AddCommand(newRemoveCmd(flags))
	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newFamiliesCmd())
	cmd.AddCommand(newHistoryCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
