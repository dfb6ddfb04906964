// Package template models desired-state items and loads them from a directory tree of JSON documents.
package template

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/hydrate/pkg/deepcopy"
)

// Attributes is the generic property bag of a desired-state item as authored in JSON.
type Attributes map[string]any

// Item is one desired-state template: the resource attributes plus where they came from.
type Item struct {
	Source string
	Index  int
	Attrs  Attributes
}

// String returns the value at key when it is a string, trimming surrounding space.
func (a Attributes) String(key string) string {
	v, ok := a[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Map returns the nested mapping at key, or nil.
func (a Attributes) Map(key string) map[string]any {
	v, _ := a[key].(map[string]any)
	return v
}

// Slice returns the nested sequence at key, or nil.
func (a Attributes) Slice(key string) []any {
	v, _ := a[key].([]any)
	return v
}

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Clone returns a deep copy that shares no containers with a.
func (a Attributes) Clone() (Attributes, error) {
	copied, err := deepcopy.Map(map[string]any(a))
	if err != nil {
		return nil, err
	}
	return Attributes(copied), nil
}

// Strip removes keys and returns the receiver. Keys may be given as exact names or
// as "prefix*" patterns.
func (a Attributes) Strip(keys ...string) Attributes {
	for _, key := range keys {
		if prefix, ok := strings.CutSuffix(key, "*"); ok {
			for k := range a {
				if strings.HasPrefix(k, prefix) {
					delete(a, k)
				}
			}
			continue
		}
		delete(a, key)
	}
	return a
}

// Label identifies the item in logs and reports.
func (i Item) Label() string {
	if i.Index > 0 {
		return fmt.Sprintf("%s#%d", i.Source, i.Index)
	}
	return i.Source
}

// Decode parses one template document. A document holds either a single JSON object or
// an array of objects.
func Decode(source string, data []byte) ([]Item, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("%s: empty document", source)
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []map[string]any
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(list))
		for i, attrs := range list {
			if attrs == nil {
				return nil, fmt.Errorf("%s: element %d is not an object", source, i)
			}
			items = append(items, Item{Source: source, Index: i + 1, Attrs: Attributes(attrs)})
		}
		return items, nil
	}

	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	if attrs == nil {
		return nil, fmt.Errorf("%s: document is not an object", source)
	}
	return []Item{{Source: source, Attrs: Attributes(attrs)}}, nil
}
