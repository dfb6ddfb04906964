package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/hydrate/internal/family"
	"github.com/alexisbeaulieu97/hydrate/internal/model"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

// ErrRunFailed is returned by Run when at least one record Failed.
var ErrRunFailed = errors.New("hydration finished with failures")

// Tenant is the expected identity of the remote tenant.
type Tenant struct {
	ID          string
	Environment string
}

// Orchestrator runs the prerequisite gate and then every selected family in order.
type Orchestrator struct {
	exec     *ExecutionContext
	loader   *template.Loader
	families []*family.Family
	tenant   Tenant
}

// NewOrchestrator wires an orchestrator. families are processed in the given order.
func NewOrchestrator(exec *ExecutionContext, loader *template.Loader, families []*family.Family, tenant Tenant) *Orchestrator {
	return &Orchestrator{exec: exec, loader: loader, families: families, tenant: tenant}
}

// State returns the run state the orchestrator writes into.
func (o *Orchestrator) State() *model.RunState {
	return o.exec.State
}

// Connect verifies the credentials reach the expected tenant. Nothing is reconciled
// unless it succeeds.
func (o *Orchestrator) Connect() error {
	state := o.exec.State
	org, err := o.exec.Client.Organization(o.exec.ctx())
	if err != nil {
		return hydraterrors.NewPrerequisiteError("tenant connection", err)
	}
	if o.tenant.ID != "" && !strings.EqualFold(org.ID, o.tenant.ID) {
		return hydraterrors.NewPrerequisiteError("tenant id", fmt.Errorf("connected to tenant %s, expected %s", org.ID, o.tenant.ID))
	}

	state.Connected = true
	state.TenantID = org.ID
	state.Environment = o.tenant.Environment
	o.exec.Logger.WithFields(map[string]any{
		"tenant":      org.ID,
		"name":        org.DisplayName,
		"environment": o.tenant.Environment,
	}).Info("connected")
	return nil
}

// Run reconciles every family and returns the overall summary. The summary is always
// produced; ErrRunFailed signals that some records Failed.
func (o *Orchestrator) Run() (model.Summary, error) {
	state := o.exec.State
	if !state.Connected {
		return model.Summary{}, hydraterrors.NewPrerequisiteError("tenant connection", errors.New("not connected"))
	}

	for _, f := range o.families {
		if err := o.exec.ctx().Err(); err != nil {
			state.Finish()
			return state.Summary(), err
		}

		log := o.exec.Logger.With("family", f.Name)
		items, err := o.loader.Load(f.TemplateDir)
		if err != nil {
			log.Error(err, "loading templates failed")
			state.Append(f.Category, model.ResultRecord{
				Name:      f.TemplateDir,
				Action:    model.ActionFailed,
				Status:    err.Error(),
				Timestamp: o.exec.now(),
				Path:      f.TemplateDir,
			})
			continue
		}
		if len(items) == 0 {
			log.Debug("no templates")
			continue
		}

		log.WithFields(map[string]any{"templates": len(items)}).Info("reconciling")
		records := NewReconciler(f, o.exec).Reconcile(items)
		state.Append(f.Category, records...)
		summary := model.Summarize(records)
		log.WithFields(map[string]any{
			"created": summary.Created + summary.WouldCreate,
			"updated": summary.Updated + summary.WouldUpdate,
			"deleted": summary.Deleted + summary.WouldDelete,
			"skipped": summary.Skipped,
			"failed":  summary.Failed,
		}).Info("family done")
	}

	state.Finish()
	summary := state.Summary()
	if !summary.Success() {
		return summary, ErrRunFailed
	}
	return summary, nil
}

// Problem is a template rejected by Validate.
type Problem struct {
	Family string
	Record model.ResultRecord
}

// ValidationReport is the offline result of checking template identities.
type ValidationReport struct {
	Checked  int
	Problems []Problem
}

// Validate checks every template of families without contacting the tenant: names,
// duplicates and type discriminators. An empty marker means DefaultMarker.
func Validate(loader *template.Loader, families []*family.Family, namePrefix, marker string) (ValidationReport, error) {
	if marker == "" {
		marker = DefaultMarker
	}
	var report ValidationReport
	for _, f := range families {
		items, err := loader.Load(f.TemplateDir)
		if err != nil {
			return report, err
		}
		seen := make(map[string]bool, len(items))
		for _, item := range items {
			report.Checked++
			if _, rec := identify(f, item, namePrefix, marker, seen); rec != nil {
				report.Problems = append(report.Problems, Problem{Family: f.Name, Record: *rec})
			}
		}
	}
	return report, nil
}
