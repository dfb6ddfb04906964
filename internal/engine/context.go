package engine

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/logger"
	"github.com/alexisbeaulieu97/hydrate/internal/model"
	"github.com/alexisbeaulieu97/hydrate/internal/upsert"
)

// DefaultMarker is stamped on every resource hydrate writes.
const DefaultMarker = "Imported by hydrate"

// Options are the run-wide reconciliation switches.
type Options struct {
	Mode         model.Mode
	DryRun       bool
	ForceUpdate  bool
	UpdatePolicy upsert.Policy
	NamePrefix   string
	Marker       string
}

// ExecutionContext contains runtime state shared by every reconciler of a run.
type ExecutionContext struct {
	Context context.Context
	Client  graph.Client
	Logger  *logger.Logger
	State   *model.RunState
	Pacer   *graph.Pacer
	Options Options
	// Now defaults to time.Now.
	Now func() time.Time
}

func (e *ExecutionContext) ctx() context.Context {
	if e.Context == nil {
		return context.Background()
	}
	return e.Context
}

func (e *ExecutionContext) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *ExecutionContext) marker() string {
	if e.Options.Marker == "" {
		return DefaultMarker
	}
	return e.Options.Marker
}
