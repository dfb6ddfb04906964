package graph

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var filtersEndpoint = Endpoint{Version: Beta, Path: "deviceManagement/assignmentFilters"}

func TestFileShimPaginates(t *testing.T) {
	t.Parallel()

	shim := NewMemoryShim(Organization{ID: "tenant"})
	shim.SetPageSize(2)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		shim.Seed(filtersEndpoint, map[string]any{"displayName": name})
	}

	first, err := shim.ListPage(context.Background(), filtersEndpoint, "", nil)
	require.NoError(t, err)
	require.Len(t, first.Value, 2)
	require.NotEmpty(t, first.NextLink)

	all, err := ListAll(context.Background(), shim, filtersEndpoint, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.Equal(t, "e", all[4]["displayName"])
	require.Equal(t, 4, shim.Stats().Lists)
}

func TestFileShimFilter(t *testing.T) {
	t.Parallel()

	shim := NewMemoryShim(Organization{ID: "tenant"})
	shim.SetPageSize(1)
	shim.Seed(filtersEndpoint,
		map[string]any{"displayName": "one", "platform": "iOS"},
		map[string]any{"displayName": "two", "platform": "android"},
		map[string]any{"displayName": "three", "platform": "iOS"},
	)

	query := url.Values{}
	query.Set("$filter", EqFilter("platform", "iOS"))
	items, err := ListAll(context.Background(), shim, filtersEndpoint, query)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "three", items[1]["displayName"])
}

func TestFileShimCRUDPersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tenant.json")
	shim, err := OpenFileShim(path)
	require.NoError(t, err)

	_, err = shim.Organization(context.Background())
	require.Error(t, err)

	ctx := context.Background()
	created, err := shim.Create(ctx, filtersEndpoint, map[string]any{"displayName": "f"})
	require.NoError(t, err)
	id := created["id"].(string)
	require.NotEmpty(t, id)

	require.NoError(t, shim.Update(ctx, filtersEndpoint, id, map[string]any{"description": "d"}))

	reopened, err := OpenFileShim(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, filtersEndpoint, id)
	require.NoError(t, err)
	require.Equal(t, "d", got["description"])
	require.Equal(t, "f", got["displayName"])

	require.NoError(t, reopened.Delete(ctx, filtersEndpoint, id))
	_, err = reopened.Get(ctx, filtersEndpoint, id)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, reopened.Stats().Deletes)
}

func TestFileShimReturnsCopies(t *testing.T) {
	t.Parallel()

	shim := NewMemoryShim(Organization{ID: "tenant"})
	shim.Seed(filtersEndpoint, map[string]any{"displayName": "x", "nested": map[string]any{"k": "v"}})

	objects := shim.Objects(filtersEndpoint)
	objects[0]["nested"].(map[string]any)["k"] = "changed"

	require.Equal(t, "v", shim.Objects(filtersEndpoint)[0]["nested"].(map[string]any)["k"])
}

func TestChildEndpoint(t *testing.T) {
	t.Parallel()

	ep := Endpoint{Version: Beta, Path: "deviceAppManagement/iosManagedAppProtections"}
	child := ep.Child("abc", "targetApps")
	require.Equal(t, "beta/deviceAppManagement/iosManagedAppProtections/abc/targetApps", child.Key())
	require.Equal(t, "https://graph/beta/deviceAppManagement/iosManagedAppProtections/abc", ep.Item("https://graph/", "abc"))
}

func TestFilterHelpers(t *testing.T) {
	t.Parallel()

	expr := EqFilter("displayName", "it's")
	field, value, ok := ParseEqFilter(expr)
	require.True(t, ok)
	require.Equal(t, "displayName", field)
	require.Equal(t, "it's", value)

	require.True(t, MatchesFilter(map[string]any{"displayName": "it's"}, expr))
	require.False(t, MatchesFilter(map[string]any{"displayName": "its"}, expr))
	require.True(t, MatchesFilter(map[string]any{}, ""))
	require.False(t, MatchesFilter(map[string]any{}, "startswith(displayName,'a')"))
}

func TestParseAPIErrorFallbacks(t *testing.T) {
	t.Parallel()

	err := parseAPIError(500, nil)
	require.Equal(t, "Internal Server Error", err.Message)

	err = parseAPIError(429, []byte(`{"error":{"code":"TooManyRequests","message":"slow down"}}`))
	require.Equal(t, "TooManyRequests", err.Code)
	require.Equal(t, "429 TooManyRequests: slow down", err.Error())
	require.Equal(t, "", ErrorMessage(nil))
}
