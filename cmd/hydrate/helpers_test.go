package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/report"
)

const cliTenant = "11111111-2222-3333-4444-555555555555"

var cliGroupsEP = graph.Endpoint{Version: graph.V1, Path: "groups"}

// workspace is a self-contained settings file, shim tenant and template tree.
type workspace struct {
	dir       string
	config    string
	shim      string
	templates string
	reports   string
}

func newWorkspace(t *testing.T, extraSettings string) workspace {
	t.Helper()

	dir := t.TempDir()
	ws := workspace{
		dir:       dir,
		config:    filepath.Join(dir, "hydrate.yaml"),
		shim:      filepath.Join(dir, "tenant.json"),
		templates: filepath.Join(dir, "templates"),
		reports:   filepath.Join(dir, "reports"),
	}

	shimDoc := fmt.Sprintf(`{"organization":{"id":%q,"displayName":"Contoso"},"collections":{}}`, cliTenant)
	require.NoError(t, os.WriteFile(ws.shim, []byte(shimDoc), 0o644))
	require.NoError(t, os.MkdirAll(ws.templates, 0o755))

	settings := fmt.Sprintf(`tenant:
  id: %q
graph:
  shim: %q
options:
  delay: 0s
templates:
  path: %q
report:
  path: %q
  formats: [json, markdown]
%s`, cliTenant, ws.shim, ws.templates, ws.reports, extraSettings)
	require.NoError(t, os.WriteFile(ws.config, []byte(settings), 0o644))

	return ws
}

func (ws workspace) writeTemplate(t *testing.T, familyDir, name, body string) {
	t.Helper()
	dir := filepath.Join(ws.templates, familyDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func (ws workspace) groups(t *testing.T) []map[string]any {
	t.Helper()
	shim, err := graph.OpenFileShim(ws.shim)
	require.NoError(t, err)
	return shim.Objects(cliGroupsEP)
}

// jsonReports decodes every JSON report written so far, oldest first.
func (ws workspace) jsonReports(t *testing.T) []report.Report {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join(ws.reports, "*.json"))
	require.NoError(t, err)

	reports := make([]report.Report, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var rep report.Report
		require.NoError(t, json.Unmarshal(data, &rep))
		reports = append(reports, rep)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.Before(reports[j].StartedAt)
	})
	return reports
}

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	cmd.SetArgs(args)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	err := cmd.Execute()
	return buf.String(), err
}

func displayNames(objects []map[string]any) []string {
	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		name, _ := obj["displayName"].(string)
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
