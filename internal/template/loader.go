package template

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

// Loader reads template documents from a root directory. Each resource family owns a
// sub-directory; files are read in lexical path order so runs are deterministic.
type Loader struct {
	root string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{root: dir}
}

// Root returns the template root directory.
func (l *Loader) Root() string {
	return l.root
}

// Load returns every item under the family directory. A missing directory yields no items.
func (l *Loader) Load(familyDir string) ([]Item, error) {
	dir := filepath.Join(l.root, familyDir)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, hydraterrors.NewValidationError(dir, "template path is not a directory", nil)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".json") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var items []Item
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, hydraterrors.NewParseError(path, 0, err)
		}
		rel, relErr := filepath.Rel(l.root, path)
		if relErr != nil {
			rel = path
		}
		decoded, err := Decode(filepath.ToSlash(rel), data)
		if err != nil {
			return nil, hydraterrors.NewParseError(path, jsonLine(data, err), err)
		}
		items = append(items, decoded...)
	}

	return items, nil
}

func jsonLine(data []byte, err error) int {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return 0
	}
	offset := int(syntaxErr.Offset)
	if offset > len(data) {
		offset = len(data)
	}
	return strings.Count(string(data[:offset]), "\n") + 1
}
