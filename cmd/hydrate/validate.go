package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/hydrate/internal/engine"
	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

func newValidateCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check templates offline without contacting the tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = root.configPath
			opts.Verbose = root.verbose
			opts.Out = cmd.OutOrStdout()
			opts.Err = cmd.ErrOrStderr()

			if err := validateRunOptions(opts); err != nil {
				return err
			}

			return runValidate(cmd, opts)
		},
	}

	addFamilyFlags(cmd, &opts)

	return cmd
}

func runValidate(cmd *cobra.Command, opts runOptions) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	families, err := selectFamilies(settings, opts.Families)
	if err != nil {
		return err
	}

	loader, cleanup, err := openTemplates(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := engine.Validate(loader, families, settings.Options.NamePrefix, settings.Options.Marker)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(result.Problems) > 0 {
		writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "FAMILY\tTEMPLATE\tNAME\tACTION\tPROBLEM")
		for _, p := range result.Problems {
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
				p.Family,
				p.Record.Path,
				valueOrFallback(p.Record.Name, "(unnamed)"),
				p.Record.Action,
				p.Record.Status,
			)
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "%d templates checked, %d problems\n", result.Checked, len(result.Problems))
	if len(result.Problems) > 0 {
		return hydraterrors.NewValidationError("templates", fmt.Sprintf("%d template(s) rejected", len(result.Problems)), nil)
	}
	return nil
}

func valueOrFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
