package main

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/alexisbeaulieu97/hydrate/internal/config"
	"github.com/alexisbeaulieu97/hydrate/internal/family"
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/logger"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

// AppContext bundles the services created for one command invocation.
type AppContext struct {
	Settings *config.Settings
	Logger   *logger.Logger
	Client   graph.Client
	Loader   *template.Loader
	Families []*family.Family

	cleanups []func()
}

// Close releases temporary checkouts, newest first.
func (a *AppContext) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}

func newAppContext(ctx context.Context, opts runOptions) (*AppContext, error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(settings); err != nil {
		return nil, err
	}

	log, err := newLogger(settings, opts.Err)
	if err != nil {
		return nil, err
	}

	families, err := selectFamilies(settings, opts.Families)
	if err != nil {
		return nil, err
	}

	app := &AppContext{Settings: settings, Logger: log, Families: families}

	loader, cleanup, err := openTemplates(ctx, settings)
	if err != nil {
		return nil, err
	}
	app.cleanups = append(app.cleanups, cleanup)
	app.Loader = loader

	client, err := newClient(ctx, settings)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Client = client

	return app, nil
}

// loadSettings reads the settings file and environment, then applies flags. The result
// is not validated.
func loadSettings(opts runOptions) (*config.Settings, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyFlags(settings, opts)
	return settings, nil
}

func applyFlags(settings *config.Settings, opts runOptions) {
	if opts.Mode != "" {
		settings.Options.Mode = string(opts.Mode)
	}
	if opts.DryRun {
		settings.Options.DryRun = true
	}
	if opts.ForceUpdate {
		settings.Options.ForceUpdate = true
	}
	if opts.Verbose {
		settings.Log.Level = "debug"
	}
	if opts.Templates != "" {
		settings.Templates.Path = opts.Templates
		settings.Templates.Repository = ""
	}
}

func newLogger(settings *config.Settings, out io.Writer) (*logger.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	return logger.New(logger.Options{
		Level:         settings.Log.Level,
		HumanReadable: isTerminal(out),
		NoColor:       os.Getenv("NO_COLOR") != "",
		Writer:        out,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// selectFamilies honours --family first; without it every family not switched off in
// the settings runs.
func selectFamilies(settings *config.Settings, filter []string) ([]*family.Family, error) {
	selected, err := family.Select(filter)
	if err != nil {
		return nil, err
	}
	if len(filter) > 0 {
		return selected, nil
	}

	enabled := make([]*family.Family, 0, len(selected))
	for _, f := range selected {
		if settings.FamilyEnabled(f.Name) {
			enabled = append(enabled, f)
		}
	}
	return enabled, nil
}

func openTemplates(ctx context.Context, settings *config.Settings) (*template.Loader, func(), error) {
	if settings.Templates.Repository != "" {
		src := template.GitSource{
			URL:    settings.Templates.Repository,
			Ref:    settings.Templates.Ref,
			Subdir: settings.Templates.Subdir,
		}
		return src.Fetch(ctx)
	}
	return template.NewLoader(settings.Templates.Path), func() {}, nil
}

func newClient(ctx context.Context, settings *config.Settings) (graph.Client, error) {
	if settings.UseShim() {
		shim, err := graph.OpenFileShim(settings.Graph.Shim)
		if err != nil {
			return nil, err
		}
		return shim, nil
	}

	creds := graph.Credentials{TenantID: settings.Tenant.ID}
	switch settings.Auth.Mode {
	case config.AuthToken:
		creds.Token = settings.Auth.Token
	default:
		creds.ClientID = settings.Auth.ClientID
		creds.ClientSecret = settings.Auth.ClientSecret
	}

	httpClient, err := graph.NewAuthorizedHTTPClient(ctx, settings.Cloud(), creds, settings.Graph.Timeout)
	if err != nil {
		return nil, err
	}
	return graph.NewHTTPClient(settings.GraphURL(), httpClient), nil
}
