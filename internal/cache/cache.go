// Package cache enumerates remote collections into name-keyed lookup tables.
package cache

import (
	"context"
	"net/url"

	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/logger"
	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

// PageFunc fetches one page of a collection. next is empty for the first page.
type PageFunc func(ctx context.Context, next string) (graph.Page, error)

// NameFunc extracts the identity of a listed object.
type NameFunc func(obj map[string]any) string

// Build drains every page of a listing into a name→id map. The first object seen for a
// name wins. A failed listing yields an empty map and is only logged.
func Build(ctx context.Context, list PageFunc, name NameFunc, log *logger.Logger) map[string]string {
	index := BuildIndex(ctx, list, name, log)
	ids := make(map[string]string, len(index))
	for key, ref := range index {
		ids[key] = ref.ID
	}
	return ids
}

// BuildIndex is Build keeping the raw attributes of each object.
func BuildIndex(ctx context.Context, list PageFunc, name NameFunc, log *logger.Logger) map[string]model.ExistingRef {
	index := make(map[string]model.ExistingRef)
	next := ""
	for {
		page, err := list(ctx, next)
		if err != nil {
			log.WarnErr(err, "listing failed, continuing with an empty cache")
			return map[string]model.ExistingRef{}
		}

		for _, obj := range page.Value {
			key := name(obj)
			if key == "" {
				continue
			}
			if _, seen := index[key]; seen {
				continue
			}
			id, _ := obj["id"].(string)
			index[key] = model.ExistingRef{Name: key, ID: id, Raw: obj}
		}

		if page.NextLink == "" {
			return index
		}
		next = page.NextLink
	}
}

// ListFunc adapts a client collection to a PageFunc.
func ListFunc(client graph.Client, ep graph.Endpoint, query url.Values) PageFunc {
	return func(ctx context.Context, next string) (graph.Page, error) {
		return client.ListPage(ctx, ep, next, query)
	}
}

// FieldName returns a NameFunc reading a string attribute.
func FieldName(field string) NameFunc {
	return func(obj map[string]any) string {
		v, _ := obj[field].(string)
		return v
	}
}

// ResourceCache lazily indexes each endpoint once per run and tracks local writes so
// later items in the same pass see them.
type ResourceCache struct {
	client  graph.Client
	log     *logger.Logger
	indexes map[string]map[string]model.ExistingRef
}

// New creates an empty cache over client.
func New(client graph.Client, log *logger.Logger) *ResourceCache {
	return &ResourceCache{
		client:  client,
		log:     log,
		indexes: make(map[string]map[string]model.ExistingRef),
	}
}

// Lookup finds a resource by name, indexing ep on first use.
func (c *ResourceCache) Lookup(ctx context.Context, ep graph.Endpoint, nameField, name string) (model.ExistingRef, bool) {
	ref, ok := c.index(ctx, ep, nameField)[name]
	return ref, ok
}

// Put records a resource created or updated during the pass.
func (c *ResourceCache) Put(ep graph.Endpoint, ref model.ExistingRef) {
	if idx, ok := c.indexes[ep.Key()]; ok {
		idx[ref.Name] = ref
	}
}

// Remove forgets a resource deleted during the pass.
func (c *ResourceCache) Remove(ep graph.Endpoint, name string) {
	if idx, ok := c.indexes[ep.Key()]; ok {
		delete(idx, name)
	}
}

// Len reports how many names are indexed for ep, or -1 when ep was never indexed.
func (c *ResourceCache) Len(ep graph.Endpoint) int {
	idx, ok := c.indexes[ep.Key()]
	if !ok {
		return -1
	}
	return len(idx)
}

func (c *ResourceCache) index(ctx context.Context, ep graph.Endpoint, nameField string) map[string]model.ExistingRef {
	if idx, ok := c.indexes[ep.Key()]; ok {
		return idx
	}
	log := c.log.With("endpoint", ep.Key())
	idx := BuildIndex(ctx, ListFunc(c.client, ep, nil), FieldName(nameField), log)
	log.WithFields(map[string]any{"count": len(idx)}).Debug("indexed collection")
	c.indexes[ep.Key()] = idx
	return idx
}
