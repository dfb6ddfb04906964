package template

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoaderReadsFilesInLexicalOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "compliance", "windows", "b.json"), `{"displayName":"B"}`)
	writeFile(t, filepath.Join(root, "compliance", "a.json"), `{"displayName":"A"}`)
	writeFile(t, filepath.Join(root, "compliance", "ios.json"), `{"displayName":"I"}`)
	writeFile(t, filepath.Join(root, "compliance", "notes.txt"), `ignored`)
	writeFile(t, filepath.Join(root, "compliance", ".hidden.json"), `{"displayName":"H"}`)

	items, err := NewLoader(root).Load("compliance")
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "A", items[0].Attrs.String("displayName"))
	require.Equal(t, "I", items[1].Attrs.String("displayName"))
	require.Equal(t, "B", items[2].Attrs.String("displayName"))
	require.Equal(t, "compliance/a.json", items[0].Source)
}

func TestLoaderExpandsArrays(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "groups", "groups.json"), `[{"displayName":"One"},{"displayName":"Two"}]`)

	items, err := NewLoader(root).Load("groups")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "groups/groups.json#2", items[1].Label())
}

func TestLoaderMissingDirectoryIsEmpty(t *testing.T) {
	t.Parallel()

	items, err := NewLoader(t.TempDir()).Load("filters")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestLoaderReportsParseLine(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "filters", "bad.json"), "{\n  \"displayName\": \"x\",\n  oops\n}")

	_, err := NewLoader(root).Load("filters")
	var parseErr *hydraterrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 3, parseErr.Line)
}

func TestAttributesHelpers(t *testing.T) {
	t.Parallel()

	attrs := Attributes{
		"displayName":          "  Padded  ",
		"id":                   "abc",
		"createdDateTime":      "2026-01-01T00:00:00Z",
		"assignments@odata.x":  "x",
		"assignments":          []any{},
		"settings":             map[string]any{"a": true},
		"count":                3,
	}

	require.Equal(t, "Padded", attrs.String("displayName"))
	require.Empty(t, attrs.String("count"))
	require.Equal(t, map[string]any{"a": true}, attrs.Map("settings"))

	clone, err := attrs.Clone()
	require.NoError(t, err)
	clone.Strip("id", "createdDateTime", "assignments*")
	clone.Map("settings")["a"] = false

	require.False(t, clone.Has("id"))
	require.False(t, clone.Has("assignments"))
	require.False(t, clone.Has("assignments@odata.x"))
	require.True(t, attrs.Has("id"))
	require.Equal(t, true, attrs.Map("settings")["a"])
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	t.Parallel()

	_, err := Decode("x.json", []byte("null"))
	require.Error(t, err)

	_, err = Decode("x.json", []byte("   "))
	require.Error(t, err)
}

func TestGitSourceClonesLocalRepository(t *testing.T) {
	t.Parallel()

	repoDir := t.TempDir()
	repo, err := git.PlainInit(repoDir, false)
	require.NoError(t, err)
	writeFile(t, filepath.Join(repoDir, "templates", "groups", "g.json"), `{"displayName":"From Git"}`)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("templates")
	require.NoError(t, err)
	_, err = wt.Commit("add templates", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	loader, cleanup, err := GitSource{URL: repoDir, Subdir: "templates"}.Fetch(context.Background())
	require.NoError(t, err)
	defer cleanup()

	items, err := loader.Load("groups")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "From Git", items[0].Attrs.String("displayName"))
}

func TestGitSourceRequiresURL(t *testing.T) {
	t.Parallel()

	_, _, err := GitSource{}.Fetch(context.Background())
	require.Error(t, err)
}
