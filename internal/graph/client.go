// Package graph talks to the remote device-management REST API.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Page is one batch of a paginated collection listing.
type Page struct {
	Value    []map[string]any `json:"value"`
	NextLink string           `json:"@odata.nextLink"`
}

// Organization identifies the tenant behind the credentials.
type Organization struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Client defines the remote operations reconciliation needs.
type Client interface {
	// ListPage fetches one page. When next is non-empty it is the continuation link
	// returned by the previous page and query is ignored.
	ListPage(ctx context.Context, ep Endpoint, next string, query url.Values) (Page, error)
	Get(ctx context.Context, ep Endpoint, id string) (map[string]any, error)
	Create(ctx context.Context, ep Endpoint, body map[string]any) (map[string]any, error)
	Update(ctx context.Context, ep Endpoint, id string, body map[string]any) error
	Delete(ctx context.Context, ep Endpoint, id string) error
	Organization(ctx context.Context) (Organization, error)
}

// HTTPClient implements Client over HTTP(S) JSON.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Ensure HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for baseURL. The http.Client is expected to add
// authorization (see NewAuthorizedHTTPClient).
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, httpClient: httpClient}
}

// BaseURL returns the service root.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// ListPage fetches a page of ep.
func (c *HTTPClient) ListPage(ctx context.Context, ep Endpoint, next string, query url.Values) (Page, error) {
	target := next
	if target == "" {
		target = ep.URL(c.baseURL)
		if len(query) > 0 {
			target += "?" + query.Encode()
		}
	}

	var page Page
	if err := c.do(ctx, http.MethodGet, target, nil, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Get fetches one resource.
func (c *HTTPClient) Get(ctx context.Context, ep Endpoint, id string) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, ep.Item(c.baseURL, id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create POSTs body to the collection and returns the created resource.
func (c *HTTPClient) Create(ctx context.Context, ep Endpoint, body map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, ep.URL(c.baseURL), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update PATCHes an existing resource.
func (c *HTTPClient) Update(ctx context.Context, ep Endpoint, id string, body map[string]any) error {
	return c.do(ctx, http.MethodPatch, ep.Item(c.baseURL, id), body, nil)
}

// Delete removes a resource.
func (c *HTTPClient) Delete(ctx context.Context, ep Endpoint, id string) error {
	return c.do(ctx, http.MethodDelete, ep.Item(c.baseURL, id), nil, nil)
}

// Organization returns the tenant the credentials belong to.
func (c *HTTPClient) Organization(ctx context.Context) (Organization, error) {
	page, err := c.ListPage(ctx, Endpoint{Version: V1, Path: "organization"}, "", nil)
	if err != nil {
		return Organization{}, err
	}
	if len(page.Value) == 0 {
		return Organization{}, fmt.Errorf("organization lookup returned no tenant")
	}
	org := Organization{}
	org.ID, _ = page.Value[0]["id"].(string)
	org.DisplayName, _ = page.Value[0]["displayName"].(string)
	return org, nil
}

func (c *HTTPClient) do(ctx context.Context, method, target string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return parseAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, target, err)
	}
	return nil
}
