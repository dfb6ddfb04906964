package main

import (
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

var removeCmdRunner = runHydration

func newRemoveCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{Mode: model.ModeDelete}

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Delete tenant resources previously created from templates",
		Long: "Delete tenant resources that match a template by name and carry the hydrate marker.\n" +
			"Resources without the marker are left alone.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = root.configPath
			opts.DryRun = root.dryRun
			opts.Verbose = root.verbose
			opts.Out = cmd.OutOrStdout()
			opts.Err = cmd.ErrOrStderr()

			if err := validateRunOptions(opts); err != nil {
				return err
			}

			return removeCmdRunner(cmd.Context(), opts)
		},
	}

	addFamilyFlags(cmd, &opts)

	return cmd
}
