package template

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitSource fetches a template tree from a git repository.
type GitSource struct {
	URL    string
	Ref    string
	Subdir string
}

// Fetch clones the repository into a fresh temporary directory and returns a loader
// rooted at the checkout (or at Subdir inside it) plus a cleanup function.
func (s GitSource) Fetch(ctx context.Context) (*Loader, func(), error) {
	if strings.TrimSpace(s.URL) == "" {
		return nil, nil, fmt.Errorf("template repository url is required")
	}

	dir, err := os.MkdirTemp("", "hydrate-templates-*")
	if err != nil {
		return nil, nil, fmt.Errorf("create checkout dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	opts := &git.CloneOptions{
		URL:          s.URL,
		SingleBranch: true,
	}
	if s.Ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.Ref)
	}
	if isRemoteURL(s.URL) {
		opts.Depth = 1
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("clone %s: %w", s.URL, err)
	}

	root := dir
	if s.Subdir != "" {
		root = dir + string(os.PathSeparator) + s.Subdir
	}
	return NewLoader(root), cleanup, nil
}

func isRemoteURL(url string) bool {
	if strings.HasPrefix(url, "file://") {
		return false
	}
	return strings.Contains(url, "://") || strings.Contains(url, "@")
}
