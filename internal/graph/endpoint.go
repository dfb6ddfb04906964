package graph

import (
	"net/url"
	"strings"
)

// API versions exposed by the remote service.
const (
	V1   = "v1.0"
	Beta = "beta"
)

// Endpoint is a versioned collection path such as beta/deviceManagement/assignmentFilters.
type Endpoint struct {
	Version string
	Path    string
}

// Key is the stable "version/path" form used for caching and the file shim.
func (e Endpoint) Key() string {
	return e.Version + "/" + strings.Trim(e.Path, "/")
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	return e.Key()
}

// URL resolves the collection URL against a service base URL.
func (e Endpoint) URL(base string) string {
	return strings.TrimRight(base, "/") + "/" + e.Key()
}

// Item resolves the URL of one member of the collection.
func (e Endpoint) Item(base, id string) string {
	return e.URL(base) + "/" + url.PathEscape(id)
}

// Child returns a sub-collection endpoint of the given item.
func (e Endpoint) Child(id, segment string) Endpoint {
	return Endpoint{
		Version: e.Version,
		Path:    strings.Trim(e.Path, "/") + "/" + url.PathEscape(id) + "/" + strings.Trim(segment, "/"),
	}
}
