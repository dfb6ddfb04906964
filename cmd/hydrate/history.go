package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/hydrate/internal/config"
	"github.com/alexisbeaulieu97/hydrate/internal/history"
	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

type historyOptions struct {
	limit int
	runID string
}

func newHistoryCmd(root *rootFlags) *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, root, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&opts.runID, "run", "", "Show the records of one run")

	return cmd
}

func runHistory(cmd *cobra.Command, root *rootFlags, opts *historyOptions) error {
	settings, err := config.Load(root.configPath)
	if err != nil {
		return err
	}
	if !settings.HistoryEnabled() {
		return hydraterrors.NewValidationError("history.dsn", "run history is disabled; set history.dsn", nil)
	}

	store, err := history.Open(settings.History.Driver, settings.History.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.runID != "" {
		return renderRun(cmd, store, opts.runID)
	}

	runs, err := store.ListRuns(cmd.Context(), opts.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "RUN\tSTARTED\tMODE\tTENANT\tTOTAL\tCREATED\tUPDATED\tDELETED\tSKIPPED\tFAILED")
	for _, run := range runs {
		mode := run.Mode
		if run.DryRun {
			mode += " (dry run)"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			mode,
			valueOrFallback(run.TenantID, "-"),
			run.Total,
			run.Created,
			run.Updated,
			run.Deleted,
			run.Skipped,
			run.Failed,
		)
	}
	return writer.Flush()
}

func renderRun(cmd *cobra.Command, store *history.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	records, err := store.Records(cmd.Context(), runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s) on %s, success: %t\n\n", run.ID, run.Mode, valueOrFallback(run.TenantID, "-"), run.Success)

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "CATEGORY\tNAME\tACTION\tID\tSTATUS")
	for _, rec := range records {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			rec.Category,
			rec.Name,
			rec.Action,
			valueOrFallback(rec.ResourceID, "-"),
			rec.Status,
		)
	}
	return writer.Flush()
}
