package engine

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/hydrate/internal/family"
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/logger"
	"github.com/alexisbeaulieu97/hydrate/internal/model"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
	"github.com/alexisbeaulieu97/hydrate/internal/upsert"
)

const testTenant = "11111111-2222-3333-4444-555555555555"

var (
	groupsEP = graph.Endpoint{Version: graph.V1, Path: "groups"}
	caEP     = graph.Endpoint{Version: graph.V1, Path: "identity/conditionalAccess/policies"}
	appsEP   = graph.Endpoint{Version: graph.Beta, Path: "deviceAppManagement/mobileApps"}
	notesEP  = graph.Endpoint{Version: graph.Beta, Path: "deviceManagement/notificationMessageTemplates"}
)

func newShim() *graph.FileShim {
	return graph.NewMemoryShim(graph.Organization{ID: testTenant, DisplayName: "Contoso"})
}

func newExec(client graph.Client, opts Options) *ExecutionContext {
	if opts.Mode == "" {
		opts.Mode = model.ModeCreate
	}
	if opts.UpdatePolicy == "" {
		opts.UpdatePolicy = upsert.PolicyUpdate
	}
	return &ExecutionContext{
		Context: context.Background(),
		Client:  client,
		Logger:  logger.Nop(),
		State:   model.NewRunState(opts.Mode, opts.DryRun),
		Pacer:   graph.NewPacer(0),
		Options: opts,
		Now: func() time.Time {
			return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		},
	}
}

func items(attrs ...template.Attributes) []template.Item {
	out := make([]template.Item, 0, len(attrs))
	for i, a := range attrs {
		out = append(out, template.Item{Source: "inline.json", Index: i + 1, Attrs: a})
	}
	return out
}

func reconcile(t *testing.T, f *family.Family, exec *ExecutionContext, attrs ...template.Attributes) []model.ResultRecord {
	t.Helper()
	return NewReconciler(f, exec).Reconcile(items(attrs...))
}

func actions(records []model.ResultRecord) []model.Action {
	out := make([]model.Action, 0, len(records))
	for _, r := range records {
		out = append(out, r.Action)
	}
	return out
}

func writeTemplate(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// faultyClient fails writes for chosen names and can break listings.
type faultyClient struct {
	graph.Client
	failCreate map[string]string
	listErr    error
	calls      int
}

func (c *faultyClient) ListPage(ctx context.Context, ep graph.Endpoint, next string, query url.Values) (graph.Page, error) {
	c.calls++
	if c.listErr != nil {
		return graph.Page{}, c.listErr
	}
	return c.Client.ListPage(ctx, ep, next, query)
}

func (c *faultyClient) Create(ctx context.Context, ep graph.Endpoint, body map[string]any) (map[string]any, error) {
	c.calls++
	name, _ := body["displayName"].(string)
	if msg, ok := c.failCreate[name]; ok {
		return nil, &graph.APIError{StatusCode: 400, Code: "Request_BadRequest", Message: msg}
	}
	return c.Client.Create(ctx, ep, body)
}

func nilOrgShim() *graph.FileShim {
	return graph.NewMemoryShim(graph.Organization{})
}
