package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/hydrate/internal/engine"
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/history"
	"github.com/alexisbeaulieu97/hydrate/internal/logger"
	"github.com/alexisbeaulieu97/hydrate/internal/model"
	"github.com/alexisbeaulieu97/hydrate/internal/report"
)

var applyCmdRunner = runHydration

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{Mode: model.ModeCreate}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update tenant resources from templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = root.configPath
			opts.DryRun = root.dryRun
			opts.Verbose = root.verbose
			opts.Out = cmd.OutOrStdout()
			opts.Err = cmd.ErrOrStderr()

			if err := validateRunOptions(opts); err != nil {
				return err
			}

			return applyCmdRunner(cmd.Context(), opts)
		},
	}

	addFamilyFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.ForceUpdate, "force-update", false, "Update existing resources even when they already match")

	return cmd
}

// runHydration performs one create or delete run: connect, reconcile every family,
// then write reports and the history entry.
func runHydration(ctx context.Context, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := newAppContext(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	settings := app.Settings
	state := model.NewRunState(settings.Mode(), settings.Options.DryRun)
	log := app.Logger.WithFields(map[string]any{
		"run":    state.RunID,
		"mode":   string(state.Mode),
		"dryRun": state.DryRun,
	})

	exec := &engine.ExecutionContext{
		Context: ctx,
		Client:  app.Client,
		Logger:  log,
		State:   state,
		Pacer:   graph.NewPacer(settings.Options.Delay),
		Options: engine.Options{
			Mode:         settings.Mode(),
			DryRun:       settings.Options.DryRun,
			ForceUpdate:  settings.Options.ForceUpdate,
			UpdatePolicy: settings.Policy(),
			NamePrefix:   settings.Options.NamePrefix,
			Marker:       settings.Options.Marker,
		},
	}
	orch := engine.NewOrchestrator(exec, app.Loader, app.Families, engine.Tenant{
		ID:          settings.Tenant.ID,
		Environment: settings.Tenant.Environment,
	})

	if err := orch.Connect(); err != nil {
		log.Error(err, "prerequisite check failed")
		return err
	}

	// Reports and history cover whatever was reconciled, including an interrupted run.
	_, runErr := orch.Run()
	if runErr != nil && !errors.Is(runErr, engine.ErrRunFailed) {
		log.WarnErr(runErr, "run interrupted")
	}

	rep := report.FromState(state)
	paths, err := report.WriteFiles(settings.Report.Path, settings.Report.Formats, rep)
	if err != nil {
		log.WarnErr(err, "writing reports failed")
	}
	for _, path := range paths {
		log.With("path", path).Info("report written")
	}
	if opts.Out != nil {
		fmt.Fprintln(opts.Out, report.Terminal(rep))
	}

	if settings.HistoryEnabled() {
		recordHistory(context.WithoutCancel(ctx), settings.History.Driver, settings.History.DSN, state, log)
	}

	return runErr
}

// recordHistory stores the finished run. History is auxiliary, so failures are logged
// and the run result stands.
func recordHistory(ctx context.Context, driver, dsn string, state *model.RunState, log *logger.Logger) {
	store, err := history.Open(driver, dsn)
	if err != nil {
		log.WarnErr(err, "opening run history failed")
		return
	}
	defer store.Close()

	if err := store.SaveRun(ctx, state); err != nil {
		log.WarnErr(err, "saving run history failed")
		return
	}
	log.Debug("run recorded")
}
