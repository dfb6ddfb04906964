package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/hydrate/internal/family"
	"github.com/alexisbeaulieu97/hydrate/internal/model"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

func templateTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTemplate(t, root, "Groups/autopilot.json", `{
  "displayName": "Autopilot devices",
  "groupTypes": ["DynamicMembership"],
  "membershipRule": "(device.devicePhysicalIDs -any (_ -contains \"[ZTDId]\"))"
}`)
	writeTemplate(t, root, "Groups/more.json", `[
  {"displayName": "Kiosks"},
  {"description": "no name"}
]`)
	writeTemplate(t, root, "ConditionalAccess/block-legacy.json", `{
  "displayName": "Block legacy authentication",
  "state": "enabled",
  "conditions": {"clientAppTypes": ["exchangeActiveSync", "other"]},
  "grantControls": {"operator": "OR", "builtInControls": ["block"]}
}`)
	writeTemplate(t, root, "ConditionalAccess/.hidden.json", `not json`)
	writeTemplate(t, root, "Filters/README.md", `ignored`)
	return root
}

func TestOrchestratorRun(t *testing.T) {
	t.Parallel()

	shim := newShim()
	exec := newExec(shim, Options{NamePrefix: "[H] "})
	orch := NewOrchestrator(exec, template.NewLoader(templateTree(t)), family.All(), Tenant{ID: testTenant, Environment: "Global"})

	require.NoError(t, orch.Connect())
	require.True(t, exec.State.Connected)
	require.Equal(t, testTenant, exec.State.TenantID)
	require.Equal(t, "Global", exec.State.Environment)

	summary, err := orch.Run()
	require.ErrorIs(t, err, ErrRunFailed)
	require.Equal(t, 3, summary.Created)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 4, summary.Total)
	require.Equal(t, []string{"Groups", "ConditionalAccess"}, exec.State.Categories())
	require.False(t, exec.State.FinishedAt.IsZero())

	ca := exec.State.Results("ConditionalAccess")
	require.Len(t, ca, 1)
	require.Equal(t, "[H] Block legacy authentication", ca[0].Name)
	require.Equal(t, family.DisabledState, ca[0].State)
	require.Equal(t, "ConditionalAccess/block-legacy.json", ca[0].Path)

	failures := exec.State.Failures()
	require.Len(t, failures, 1)
	require.Equal(t, "Missing displayName", failures[0].Status)
}

func TestOrchestratorSecondRunIsClean(t *testing.T) {
	t.Parallel()

	shim := newShim()
	root := t.TempDir()
	writeTemplate(t, root, "Groups/kiosks.json", `{"displayName": "Kiosks"}`)
	loader := template.NewLoader(root)

	for i, want := range []model.Action{model.ActionCreated, model.ActionSkipped} {
		exec := newExec(shim, Options{})
		orch := NewOrchestrator(exec, loader, family.All(), Tenant{ID: testTenant})
		require.NoError(t, orch.Connect())
		summary, err := orch.Run()
		require.NoError(t, err, "run %d", i)
		require.Equal(t, want, exec.State.Results("Groups")[0].Action)
		require.True(t, summary.Success())
	}
}

func TestConnectRejectsWrongTenant(t *testing.T) {
	t.Parallel()

	shim := newShim()
	exec := newExec(shim, Options{})
	orch := NewOrchestrator(exec, template.NewLoader(templateTree(t)), family.All(), Tenant{ID: "other-tenant"})

	err := orch.Connect()
	var prereq *hydraterrors.PrerequisiteError
	require.True(t, errors.As(err, &prereq))
	require.False(t, exec.State.Connected)

	_, err = orch.Run()
	require.True(t, errors.As(err, &prereq))
	require.Zero(t, shim.Stats().Lists)
	require.Empty(t, exec.State.AllResults())
}

func TestConnectFailsWithoutOrganization(t *testing.T) {
	t.Parallel()

	orch := NewOrchestrator(newExec(nilOrgShim(), Options{}), template.NewLoader(t.TempDir()), family.All(), Tenant{})
	require.Error(t, orch.Connect())
}

func TestRunRecordsUnreadableTemplates(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTemplate(t, root, "Groups/broken.json", "{\n  \"displayName\": \n}")
	exec := newExec(newShim(), Options{})
	orch := NewOrchestrator(exec, template.NewLoader(root), family.All(), Tenant{ID: testTenant})
	require.NoError(t, orch.Connect())

	_, err := orch.Run()
	require.ErrorIs(t, err, ErrRunFailed)
	failures := exec.State.Failures()
	require.Len(t, failures, 1)
	require.Equal(t, "Groups", failures[0].Name)
	require.Contains(t, failures[0].Status, "broken.json")
}

func TestValidateIsOffline(t *testing.T) {
	t.Parallel()

	root := templateTree(t)
	writeTemplate(t, root, "Filters/tv.json", `{"displayName": "TV", "platform": "tvOS"}`)
	writeTemplate(t, root, "Groups/dup.json", `{"displayName": "Kiosks"}`)

	report, err := Validate(template.NewLoader(root), family.All(), "", "")
	require.NoError(t, err)
	require.Equal(t, 6, report.Checked)
	require.Len(t, report.Problems, 3)

	statuses := map[string]string{}
	for _, p := range report.Problems {
		statuses[p.Family+"/"+p.Record.Name] = p.Record.Status
	}
	require.Equal(t, map[string]string{
		"groups/Groups/more.json#2": "Missing displayName",
		"groups/Kiosks":             "Duplicate displayName",
		"filters/TV":                "Unsupported type: tvOS",
	}, statuses)
}
