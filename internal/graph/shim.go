package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/hydrate/pkg/deepcopy"
)

const (
	defaultShimPageSize = 100
	shimScheme          = "shim://"
)

// shimDocument is the on-disk layout of a FileShim.
type shimDocument struct {
	Organization Organization                `json:"organization"`
	Collections  map[string][]map[string]any `json:"collections"`
}

// ShimStats counts calls made against a FileShim.
type ShimStats struct {
	Lists   int
	Gets    int
	Creates int
	Updates int
	Deletes int
}

// Writes is the number of mutating calls.
func (s ShimStats) Writes() int {
	return s.Creates + s.Updates + s.Deletes
}

// FileShim is an offline Client backed by a JSON document. Collections are keyed by
// Endpoint.Key(). When a path is set every mutation is written back to disk.
type FileShim struct {
	mu       sync.Mutex
	path     string
	doc      shimDocument
	pageSize int
	stats    ShimStats
}

// Ensure FileShim implements Client.
var _ Client = (*FileShim)(nil)

// NewMemoryShim creates an in-memory shim for the given tenant.
func NewMemoryShim(org Organization) *FileShim {
	return &FileShim{
		doc:      shimDocument{Organization: org, Collections: map[string][]map[string]any{}},
		pageSize: defaultShimPageSize,
	}
}

// OpenFileShim loads a shim document from path. A missing file starts empty.
func OpenFileShim(path string) (*FileShim, error) {
	shim := NewMemoryShim(Organization{})
	shim.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return shim, nil
		}
		return nil, fmt.Errorf("read shim %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &shim.doc); err != nil {
		return nil, fmt.Errorf("decode shim %s: %w", path, err)
	}
	if shim.doc.Collections == nil {
		shim.doc.Collections = map[string][]map[string]any{}
	}
	return shim, nil
}

// SetPageSize changes how many objects each ListPage returns.
func (s *FileShim) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.pageSize = n
	}
}

// Seed appends objects to a collection, assigning ids where missing.
func (s *FileShim) Seed(ep Endpoint, objects ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, obj := range objects {
		stored := cloneObject(obj)
		if id, _ := stored["id"].(string); id == "" {
			stored["id"] = uuid.NewString()
		}
		s.doc.Collections[ep.Key()] = append(s.doc.Collections[ep.Key()], stored)
	}
}

// Objects returns a copy of every object in a collection.
func (s *FileShim) Objects(ep Endpoint) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.doc.Collections[ep.Key()]
	out := make([]map[string]any, 0, len(items))
	for _, obj := range items {
		out = append(out, cloneObject(obj))
	}
	return out
}

// Stats returns the call counters.
func (s *FileShim) Stats() ShimStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// ListPage returns one page, honouring an EqFilter-style $filter.
func (s *FileShim) ListPage(_ context.Context, ep Endpoint, next string, query url.Values) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Lists++

	key := ep.Key()
	skip := 0
	filter := query.Get("$filter")
	if next != "" {
		var err error
		key, skip, filter, err = parseShimLink(next)
		if err != nil {
			return Page{}, err
		}
	}

	var matched []map[string]any
	for _, obj := range s.doc.Collections[key] {
		if MatchesFilter(obj, filter) {
			matched = append(matched, obj)
		}
	}

	page := Page{Value: []map[string]any{}}
	end := skip + s.pageSize
	if end > len(matched) {
		end = len(matched)
	}
	for _, obj := range matched[min(skip, len(matched)):end] {
		page.Value = append(page.Value, cloneObject(obj))
	}
	if end < len(matched) {
		page.NextLink = shimLink(key, end, filter)
	}
	return page, nil
}

// Get returns one object by id.
func (s *FileShim) Get(_ context.Context, ep Endpoint, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Gets++

	idx := s.indexOf(ep.Key(), id)
	if idx < 0 {
		return nil, notFound(ep, id)
	}
	return cloneObject(s.doc.Collections[ep.Key()][idx]), nil
}

// Create stores body under a fresh id.
func (s *FileShim) Create(_ context.Context, ep Endpoint, body map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Creates++

	stored := cloneObject(body)
	stored["id"] = uuid.NewString()
	s.doc.Collections[ep.Key()] = append(s.doc.Collections[ep.Key()], stored)
	if err := s.save(); err != nil {
		return nil, err
	}
	return cloneObject(stored), nil
}

// Update merges body into the stored object.
func (s *FileShim) Update(_ context.Context, ep Endpoint, id string, body map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Updates++

	idx := s.indexOf(ep.Key(), id)
	if idx < 0 {
		return notFound(ep, id)
	}
	stored := s.doc.Collections[ep.Key()][idx]
	for k, v := range cloneObject(body) {
		stored[k] = v
	}
	stored["id"] = id
	return s.save()
}

// Delete removes an object.
func (s *FileShim) Delete(_ context.Context, ep Endpoint, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Deletes++

	key := ep.Key()
	idx := s.indexOf(key, id)
	if idx < 0 {
		return notFound(ep, id)
	}
	s.doc.Collections[key] = append(s.doc.Collections[key][:idx], s.doc.Collections[key][idx+1:]...)
	return s.save()
}

// Organization returns the configured tenant.
func (s *FileShim) Organization(context.Context) (Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Organization.ID == "" {
		return Organization{}, fmt.Errorf("shim has no organization configured")
	}
	return s.doc.Organization, nil
}

func (s *FileShim) indexOf(key, id string) int {
	for i, obj := range s.doc.Collections[key] {
		if got, _ := obj["id"].(string); got == id {
			return i
		}
	}
	return -1
}

func (s *FileShim) save() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode shim: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".shim-*.json")
	if err != nil {
		return fmt.Errorf("write shim: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write shim: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write shim: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func notFound(ep Endpoint, id string) error {
	return &APIError{
		StatusCode: http.StatusNotFound,
		Code:       "Request_ResourceNotFound",
		Message:    fmt.Sprintf("Resource '%s' does not exist in %s", id, ep.Key()),
	}
}

func shimLink(key string, skip int, filter string) string {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	if filter != "" {
		q.Set("$filter", filter)
	}
	return shimScheme + key + "?" + q.Encode()
}

func parseShimLink(link string) (key string, skip int, filter string, err error) {
	rest, ok := strings.CutPrefix(link, shimScheme)
	if !ok {
		return "", 0, "", fmt.Errorf("invalid continuation link %q", link)
	}
	key, rawQuery, _ := strings.Cut(rest, "?")
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", 0, "", fmt.Errorf("invalid continuation link %q: %w", link, err)
	}
	skip, err = strconv.Atoi(q.Get("skip"))
	if err != nil {
		return "", 0, "", fmt.Errorf("invalid continuation link %q: %w", link, err)
	}
	return key, skip, q.Get("$filter"), nil
}

func cloneObject(obj map[string]any) map[string]any {
	if obj == nil {
		return map[string]any{}
	}
	out, err := deepcopy.Map(obj)
	if err != nil {
		return map[string]any{}
	}
	return out
}
